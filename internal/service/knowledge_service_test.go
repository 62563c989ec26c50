package service

import (
	"testing"

	"policyhub/pkg/config"
)

func TestResolveChunking(t *testing.T) {
	cfg := &config.IngestConfig{ChunkSize: 500, ChunkOverlap: 50}

	tests := []struct {
		name          string
		size, overlap int
		cfg           *config.IngestConfig
		wantSize      int
		wantOverlap   int
	}{
		{"unset takes configured defaults", 0, 0, cfg, 500, 50},
		{"explicit values kept", 1000, 100, cfg, 1000, 100},
		{"oversized overlap falls back to config", 300, 300, cfg, 300, 50},
		{"negative overlap falls back to config", 300, -1, cfg, 300, 50},
		{"nil config uses package defaults", 0, 0, nil, defaultChunkSize, defaultChunkOverlap},
		{"config overlap too large for size drops to zero", 30, 0, cfg, 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, overlap := resolveChunking(tt.size, tt.overlap, tt.cfg)
			if size != tt.wantSize || overlap != tt.wantOverlap {
				t.Fatalf("resolveChunking(%d, %d) = (%d, %d), want (%d, %d)",
					tt.size, tt.overlap, size, overlap, tt.wantSize, tt.wantOverlap)
			}
		})
	}
}
