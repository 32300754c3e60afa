package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Values are read from a YAML file,
// then overridden by SYMPTOMRANK_* environment variables.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	History    HistoryConfig    `yaml:"history"`
	Cluster    ClusterConfig    `yaml:"cluster"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowOrigins    string        `yaml:"allow_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ModelConfig selects the classifier backend. RemoteURL takes precedence
// over Path when both are set.
type ModelConfig struct {
	Path      string        `yaml:"path"`
	RemoteURL string        `yaml:"remote_url"`
	Timeout   time.Duration `yaml:"timeout"`
	// Serialize guards the classifier with a mutex for backends that are not
	// safe for concurrent inference.
	Serialize bool `yaml:"serialize"`
}

// VocabularyConfig points at a symptom list; empty means the built-in one.
type VocabularyConfig struct {
	Path string `yaml:"path"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// MaxList caps GET /predictions.
	MaxList int `yaml:"max_list"`
}

type ClusterConfig struct {
	Enabled   bool   `yaml:"enabled"`
	NodeID    string `yaml:"node_id"`
	RaftAddr  string `yaml:"raft_addr"`
	DataDir   string `yaml:"data_dir"`
	Bootstrap bool   `yaml:"bootstrap"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5001"
	}
	if c.Server.AllowOrigins == "" {
		c.Server.AllowOrigins = "*"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Model.Path == "" && c.Model.RemoteURL == "" {
		c.Model.Path = "models/trained_model.json"
	}
	if c.Model.Timeout <= 0 {
		c.Model.Timeout = 5 * time.Second
	}
	if c.History.Path == "" {
		c.History.Path = "symptomrank_history.db"
	}
	if c.History.MaxList <= 0 {
		c.History.MaxList = 100
	}
	if c.Cluster.NodeID == "" {
		c.Cluster.NodeID = "node-1"
	}
	if c.Cluster.RaftAddr == "" {
		c.Cluster.RaftAddr = "127.0.0.1:7001"
	}
	if c.Cluster.DataDir == "" {
		c.Cluster.DataDir = "data"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.Cluster.Enabled && !c.History.Enabled {
		return errors.New("cluster requires history to be enabled")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// Load reads path (optional), applies environment overrides and defaults.
// A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

const envPrefix = "SYMPTOMRANK_"

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":          &c.Server.Addr,
		"ALLOW_ORIGINS": &c.Server.AllowOrigins,
		"MODEL_PATH":    &c.Model.Path,
		"MODEL_URL":     &c.Model.RemoteURL,
		"VOCABULARY":    &c.Vocabulary.Path,
		"HISTORY_PATH":  &c.History.Path,
		"NODE_ID":       &c.Cluster.NodeID,
		"RAFT_ADDR":     &c.Cluster.RaftAddr,
		"DATA_DIR":      &c.Cluster.DataDir,
		"LOG_LEVEL":     &c.Logging.Level,
		"LOG_FORMAT":    &c.Logging.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"MODEL_SERIALIZE":   &c.Model.Serialize,
		"HISTORY":           &c.History.Enabled,
		"CLUSTER":           &c.Cluster.Enabled,
		"CLUSTER_BOOTSTRAP": &c.Cluster.Bootstrap,
	}
	for key, dst := range bools {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
	}

	if v, ok := lookup(envPrefix + "MODEL_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sMODEL_TIMEOUT: %w", envPrefix, err)
		}
		c.Model.Timeout = d
	}
	return nil
}
