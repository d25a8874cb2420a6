package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
	"github.com/akshara-labs/akshara/pkg/logging"
	"github.com/akshara-labs/akshara/pkg/script"
)

// PipelineConfig holds complete pipeline configuration
type PipelineConfig struct {
	// Logging configuration
	Logging *logging.LogConfig `json:"logging" yaml:"logging"`

	// Collection run settings (embedded verbatim into metadata sidecars)
	Collection *corpus.CollectionConfig `json:"collection" yaml:"collection"`

	// Fetcher-level settings
	Scraping *ScrapingConfig `json:"scraping" yaml:"scraping"`

	// Artifact storage configuration
	Storage *storage.Config `json:"storage" yaml:"storage"`

	// Server configuration
	Server *ServerConfig `json:"server" yaml:"server"`

	// Scheduled collection configuration
	Scheduler *SchedulerConfig `json:"scheduler" yaml:"scheduler"`
}

// ScrapingConfig holds fetcher settings that stay constant across runs
type ScrapingConfig struct {
	UserAgent     string `json:"user_agent" yaml:"user_agent"`
	RespectRobots bool   `json:"respect_robots" yaml:"respect_robots"`
	MaxBodySize   int64  `json:"max_body_size" yaml:"max_body_size"` // bytes
}

// ServerConfig holds server settings
type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// SchedulerConfig holds scheduled collection settings
type SchedulerConfig struct {
	Enabled           bool   `json:"enabled" yaml:"enabled"`
	Schedule          string `json:"schedule" yaml:"schedule"` // cron expression
	CleanAfterCollect bool   `json:"clean_after_collect" yaml:"clean_after_collect"`
}

// DefaultPipelineConfig returns a complete default configuration
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Logging: &logging.LogConfig{
			Level:      "info",
			Format:     "json",
			OutputFile: "logs/akshara.log",
			Console:    true,
		},

		Collection: corpus.DefaultCollectionConfig(),

		Scraping: &ScrapingConfig{
			UserAgent:     "Akshara-Corpus-Collector/1.0 (Educational)",
			RespectRobots: false,
			MaxBodySize:   20 * 1024 * 1024, // 20MB
		},

		Storage: storage.DefaultConfig(),

		Server: &ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},

		Scheduler: &SchedulerConfig{
			Enabled:           false,
			Schedule:          "0 3 * * *",
			CleanAfterCollect: true,
		},
	}
}

// ProductionPipelineConfig returns production-ready configuration
func ProductionPipelineConfig() *PipelineConfig {
	config := DefaultPipelineConfig()

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Console = false

	config.Scraping.RespectRobots = true
	config.Storage.EnableGitArchive = true

	return config
}

// DevelopmentPipelineConfig returns development configuration
func DevelopmentPipelineConfig() *PipelineConfig {
	config := DefaultPipelineConfig()

	config.Logging.Level = "debug"
	config.Logging.Format = "pretty"
	config.Logging.Console = true
	config.Logging.OutputFile = ""

	config.Collection.DelaySeconds = 0.5

	return config
}

// LoadConfig reads a YAML config file over the defaults. Fields absent
// from the file keep their default values.
func LoadConfig(path string) (*PipelineConfig, error) {
	config := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the pipeline cannot
// run with.
func (c *PipelineConfig) Validate() error {
	if c.Collection == nil {
		return fmt.Errorf("collection config is required")
	}
	if err := c.Collection.Validate(); err != nil {
		return fmt.Errorf("invalid collection config: %w", err)
	}
	if _, err := script.Lookup(c.Collection.Script); c.Collection.Script != "" && err != nil {
		return fmt.Errorf("invalid collection config: %w", err)
	}
	if c.Server != nil {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", c.Server.Port)
		}
	}
	if c.Scheduler != nil && c.Scheduler.Enabled && c.Scheduler.Schedule == "" {
		return fmt.Errorf("scheduler enabled without a schedule")
	}
	return nil
}
