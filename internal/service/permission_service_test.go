package service

import (
	"context"
	"errors"
	"testing"

	"policyhub/internal/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repositories are nil on purpose: validation must reject bad input
// before any store access.
func newValidationOnlyPermissionService() *PermissionService {
	return NewPermissionService(nil, nil, nil, zap.NewNop())
}

func TestGrant_RejectsUnknownPermission(t *testing.T) {
	svc := newValidationOnlyPermissionService()

	_, err := svc.Grant(context.Background(), &dto.GrantPermissionRequest{
		UserID:       uuid.New().String(),
		ResourceType: "assistant",
		ResourceID:   uuid.New().String(),
		Permission:   "owner",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGrant_RejectsUnknownResourceType(t *testing.T) {
	svc := newValidationOnlyPermissionService()

	_, err := svc.Grant(context.Background(), &dto.GrantPermissionRequest{
		UserID:       uuid.New().String(),
		ResourceType: "portal",
		ResourceID:   uuid.New().String(),
		Permission:   "read",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGrant_RejectsMalformedIDs(t *testing.T) {
	svc := newValidationOnlyPermissionService()

	_, err := svc.Grant(context.Background(), &dto.GrantPermissionRequest{
		UserID:       "not-a-uuid",
		ResourceType: "assistant",
		ResourceID:   uuid.New().String(),
		Permission:   "read",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
