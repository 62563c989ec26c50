package vectorstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendPgvector      = "pgvector"
	BackendMilvus        = "milvus"
	BackendElasticsearch = "elasticsearch"
)

// Config is the declarative vector store template. All backends parse and
// validate; only pgvector is wired to a live store.
type Config struct {
	Backend     string             `yaml:"backend"`
	Connection  ConnectionConfig   `yaml:"connection"`
	Fields      FieldTemplate      `yaml:"field_template"`
	Index       IndexTemplate      `yaml:"index_template"`
	Collection  CollectionTemplate `yaml:"collection_template"`
	Performance PerformanceConfig  `yaml:"performance"`
	Maintenance MaintenanceConfig  `yaml:"maintenance"`
}

type ConnectionConfig struct {
	Addr     string `yaml:"addr"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type FieldTemplate struct {
	IDField      string `yaml:"id_field"`
	ContentField string `yaml:"content_field"`
	VectorField  string `yaml:"vector_field"`
	Dimension    int    `yaml:"dimension"`
}

type IndexTemplate struct {
	Kind   string         `yaml:"kind"`
	Metric string         `yaml:"metric"`
	Params map[string]int `yaml:"params"`
}

type CollectionTemplate struct {
	NamePattern string `yaml:"name_pattern"`
	Shards      int    `yaml:"shards"`
}

type PerformanceConfig struct {
	BatchSize       int `yaml:"batch_size"`
	FlushIntervalMS int `yaml:"flush_interval_ms"`
}

type MaintenanceConfig struct {
	CompactIntervalMin int `yaml:"compact_interval_min"`
}

// LoadConfig reads and validates a vector store template file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vector store config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse vector store config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPgvector, BackendMilvus, BackendElasticsearch:
	case "":
		return fmt.Errorf("vector store config: backend is required")
	default:
		return fmt.Errorf("vector store config: unknown backend %q", c.Backend)
	}

	if c.Fields.Dimension <= 0 {
		return fmt.Errorf("vector store config: field_template.dimension must be positive")
	}

	switch c.Index.Metric {
	case "cosine", "l2", "ip":
	case "":
		return fmt.Errorf("vector store config: index_template.metric is required")
	default:
		return fmt.Errorf("vector store config: unknown metric %q", c.Index.Metric)
	}

	if c.Collection.NamePattern == "" {
		return fmt.Errorf("vector store config: collection_template.name_pattern is required")
	}
	if c.Performance.BatchSize <= 0 {
		return fmt.Errorf("vector store config: performance.batch_size must be positive")
	}
	return nil
}
