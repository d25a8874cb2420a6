package storage

import (
	"context"
	"time"
)

// ArtifactKind partitions artifacts by pipeline stage.
type ArtifactKind string

const (
	KindRaw   ArtifactKind = "raw"
	KindClean ArtifactKind = "clean"
)

// ArtifactInfo describes one stored artifact for listings.
type ArtifactInfo struct {
	Name     string       `json:"name"`
	Kind     ArtifactKind `json:"kind"`
	Path     string       `json:"path"`
	Size     int64        `json:"size"`
	Modified time.Time    `json:"modified"`
}

// ArtifactStore persists pipeline artifacts and the operator's URL
// list. Writes are whole-file; an artifact is never mutated after it
// has been written.
type ArtifactStore interface {
	Save(ctx context.Context, kind ArtifactKind, name string, data []byte) (string, error)
	Read(ctx context.Context, kind ArtifactKind, name string) ([]byte, error)
	List(ctx context.Context, kind ArtifactKind) ([]ArtifactInfo, error)
	SaveURLList(ctx context.Context, content string) error
	LoadURLList(ctx context.Context) (string, error)
	Health(ctx context.Context) error
}

// OperationMetric captures one storage operation for telemetry.
type OperationMetric struct {
	Operation string
	Backend   string
	Duration  time.Duration
	Success   bool
	Error     error
}

// MetricsCollector receives storage operation metrics.
type MetricsCollector interface {
	Record(metric OperationMetric)
}

// Config holds artifact storage settings.
type Config struct {
	DataDir          string `json:"data_dir" yaml:"data_dir"`
	EnableGitArchive bool   `json:"enable_git_archive" yaml:"enable_git_archive"`
	GitArchiveDir    string `json:"git_archive_dir" yaml:"git_archive_dir"`
}

// DefaultConfig returns the default storage layout: data/{raw,clean,urls}
// under the working directory, git archiving off.
func DefaultConfig() *Config {
	return &Config{
		DataDir:          "data",
		EnableGitArchive: false,
		GitArchiveDir:    "data/archive",
	}
}
