package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// sanitizeUTF8 strips invalid byte sequences so content can be stored in
// a text column.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// approxTokenCount is a rough token estimate: CJK text runs about one
// token per rune, Latin text about one per four characters.
func approxTokenCount(s string) int {
	runes := utf8.RuneCountInString(s)
	bytes := len(s)
	if bytes > runes*2 {
		// Mostly multibyte text.
		return runes
	}
	n := bytes / 4
	if n == 0 && bytes > 0 {
		n = 1
	}
	return n
}
