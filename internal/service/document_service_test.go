package service

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	text := strings.Repeat("政", 25)

	pieces := splitText(text, 10, 2)
	if len(pieces) != 3 {
		t.Fatalf("got %d pieces, want 3", len(pieces))
	}
	if len([]rune(pieces[0])) != 10 {
		t.Errorf("first piece length = %d runes", len([]rune(pieces[0])))
	}
	// Overlap: each window starts chunkSize-overlap runes after the last.
	if len([]rune(pieces[2])) != 9 {
		t.Errorf("tail piece length = %d runes, want 9", len([]rune(pieces[2])))
	}
}

func TestSplitText_Empty(t *testing.T) {
	if pieces := splitText("", 100, 10); pieces != nil {
		t.Errorf("expected no pieces, got %d", len(pieces))
	}
}

func TestSplitText_BadOverlap(t *testing.T) {
	pieces := splitText("abcdef", 3, 5)
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2 (overlap ignored)", len(pieces))
	}
	if pieces[0] != "abc" || pieces[1] != "def" {
		t.Errorf("pieces = %v", pieces)
	}
}

func TestApproxTokenCount(t *testing.T) {
	if n := approxTokenCount("政策补贴"); n != 4 {
		t.Errorf("CJK token count = %d, want 4", n)
	}
	if n := approxTokenCount("hello world!"); n != 3 {
		t.Errorf("latin token count = %d, want 3", n)
	}
	if n := approxTokenCount("ab"); n != 1 {
		t.Errorf("short latin token count = %d, want 1", n)
	}
}
