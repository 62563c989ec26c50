package main

import (
	"context"
	"testing"

	"policyhub/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakePortalStore struct {
	byRegion map[string]*models.PolicyPortal
	created  []string
}

func newFakePortalStore() *fakePortalStore {
	return &fakePortalStore{byRegion: make(map[string]*models.PolicyPortal)}
}

func (f *fakePortalStore) GetByRegion(ctx context.Context, region string) (*models.PolicyPortal, error) {
	return f.byRegion[region], nil
}

func (f *fakePortalStore) Create(ctx context.Context, p *models.PolicyPortal) error {
	f.byRegion[p.Region] = p
	f.created = append(f.created, p.Region)
	return nil
}

func TestSeedPortals_FreshInstallCreatesAll(t *testing.T) {
	store := newFakePortalStore()

	if err := seedPortals(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("seedPortals: %v", err)
	}

	if len(store.created) != 3 {
		t.Fatalf("expected 3 portals created on a fresh install, got %d (%v)", len(store.created), store.created)
	}
	for _, region := range []string{"广东省", "深圳市", "广州市"} {
		p := store.byRegion[region]
		if p == nil {
			t.Fatalf("portal for %s not created", region)
		}
		if p.ID == uuid.Nil {
			t.Errorf("portal for %s has no id", region)
		}
		if p.Selectors.Result == "" || p.Selectors.Title == "" {
			t.Errorf("portal for %s missing selectors", region)
		}
	}
}

func TestSeedPortals_ExistingRegionsSkipped(t *testing.T) {
	store := newFakePortalStore()
	// A disabled row still occupies the region's unique slot.
	store.byRegion["广东省"] = &models.PolicyPortal{
		ID:      uuid.New(),
		Region:  "广东省",
		Enabled: false,
	}

	if err := seedPortals(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("seedPortals: %v", err)
	}

	if len(store.created) != 2 {
		t.Fatalf("expected 2 portals created, got %d (%v)", len(store.created), store.created)
	}
	for _, region := range store.created {
		if region == "广东省" {
			t.Fatal("existing region was re-created")
		}
	}
}

func TestSeedPortals_Idempotent(t *testing.T) {
	store := newFakePortalStore()

	if err := seedPortals(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := seedPortals(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(store.created) != 3 {
		t.Fatalf("expected second run to create nothing, got %d total creates", len(store.created))
	}
}
