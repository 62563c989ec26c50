package vectorstore

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
backend: pgvector
connection:
  addr: localhost:5432
  user: policyhub
  database: policyhub
field_template:
  id_field: id
  content_field: content
  vector_field: embedding
  dimension: 1536
index_template:
  kind: hnsw
  metric: cosine
  params:
    m: 16
    ef_construction: 200
collection_template:
  name_pattern: kb_{kb_id}
  shards: 1
performance:
  batch_size: 128
  flush_interval_ms: 1000
maintenance:
  compact_interval_min: 60
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectorstore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Backend != BackendPgvector {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.Fields.Dimension != 1536 {
		t.Errorf("dimension = %d", cfg.Fields.Dimension)
	}
	if cfg.Index.Params["ef_construction"] != 200 {
		t.Errorf("index params = %v", cfg.Index.Params)
	}
	if cfg.Collection.NamePattern != "kb_{kb_id}" {
		t.Errorf("name pattern = %q", cfg.Collection.NamePattern)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "pinecone" }},
		{"missing backend", func(c *Config) { c.Backend = "" }},
		{"zero dimension", func(c *Config) { c.Fields.Dimension = 0 }},
		{"unknown metric", func(c *Config) { c.Index.Metric = "manhattan" }},
		{"missing name pattern", func(c *Config) { c.Collection.NamePattern = "" }},
		{"zero batch size", func(c *Config) { c.Performance.BatchSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, sampleConfig))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNew_OnlyPgvectorExecutable(t *testing.T) {
	cfg := &Config{Backend: BackendMilvus}
	if _, err := New(cfg, nil); err == nil {
		t.Error("milvus backend should not produce a live store")
	}

	cfg.Backend = BackendPgvector
	store, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("pgvector backend: %v", err)
	}
	if store.Backend() != BackendPgvector {
		t.Errorf("backend = %q", store.Backend())
	}
}
