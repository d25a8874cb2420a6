package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/akshara-labs/akshara/pkg/logging"
)

const urlListFileName = "urls.txt"

// FilesystemStore keeps artifacts as plain files under
// dataDir/{raw,clean,urls}. Discovery is a directory scan; for a
// single-operator corpus that is the database. An in-memory index
// fronts the scan for name lookups.
type FilesystemStore struct {
	dataDir string
	index   *ArtifactIndex
	metrics MetricsCollector
}

// NewFilesystemStore creates the store and its directory layout.
func NewFilesystemStore(cfg *Config, metrics MetricsCollector) (*FilesystemStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &FilesystemStore{
		dataDir: cfg.DataDir,
		index:   NewArtifactIndex(),
		metrics: metrics,
	}
	for _, dir := range []string{s.kindDir(KindRaw), s.kindDir(KindClean), s.urlsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	return s, nil
}

func (s *FilesystemStore) kindDir(kind ArtifactKind) string {
	return filepath.Join(s.dataDir, string(kind))
}

func (s *FilesystemStore) urlsDir() string {
	return filepath.Join(s.dataDir, "urls")
}

// Save writes one artifact and returns its path. An existing artifact
// with the same name is never overwritten; each run stamps fresh names.
func (s *FilesystemStore) Save(ctx context.Context, kind ArtifactKind, name string, data []byte) (string, error) {
	start := time.Now()
	path, err := s.save(kind, name, data)
	s.record("save", start, err)
	return path, err
}

func (s *FilesystemStore) save(kind ArtifactKind, name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.kindDir(kind), name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("artifact already exists: %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	s.index.Add(ArtifactInfo{
		Name:     name,
		Kind:     kind,
		Path:     path,
		Size:     int64(len(data)),
		Modified: time.Now(),
	})
	logger := logging.GetStorageLogger("save", "filesystem")
	logger.Debug().
		Str("kind", string(kind)).
		Str("name", name).
		Int("bytes", len(data)).
		Msg("Artifact written")
	return path, nil
}

// Read returns one artifact's content by name.
func (s *FilesystemStore) Read(ctx context.Context, kind ArtifactKind, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.read(kind, name)
	s.record("read", start, err)
	return data, err
}

func (s *FilesystemStore) read(kind ArtifactKind, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.kindDir(kind), name))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s/%s: %w", kind, name, err)
	}
	return data, nil
}

// List scans one kind's directory and returns artifacts newest first.
// The scan also rebuilds the index for that kind.
func (s *FilesystemStore) List(ctx context.Context, kind ArtifactKind) ([]ArtifactInfo, error) {
	start := time.Now()
	infos, err := s.list(kind)
	s.record("list", start, err)
	return infos, err
}

func (s *FilesystemStore) list(kind ArtifactKind) ([]ArtifactInfo, error) {
	entries, err := os.ReadDir(s.kindDir(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s artifacts: %w", kind, err)
	}
	infos := make([]ArtifactInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, ArtifactInfo{
			Name:     entry.Name(),
			Kind:     kind,
			Path:     filepath.Join(s.kindDir(kind), entry.Name()),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Modified.After(infos[j].Modified)
	})
	s.index.RebuildKind(kind, infos)
	return infos, nil
}

// Lookup resolves one artifact from the index, falling back to a scan
// when the index has not seen the name yet.
func (s *FilesystemStore) Lookup(ctx context.Context, kind ArtifactKind, name string) (ArtifactInfo, bool) {
	if info, ok := s.index.Get(kind, name); ok {
		return info, true
	}
	if _, err := s.List(ctx, kind); err != nil {
		return ArtifactInfo{}, false
	}
	return s.index.Get(kind, name)
}

// SaveURLList overwrites the operator's URL list. Unlike artifacts the
// list is mutable; it is working input, not a run product.
func (s *FilesystemStore) SaveURLList(ctx context.Context, content string) error {
	start := time.Now()
	err := os.WriteFile(filepath.Join(s.urlsDir(), urlListFileName), []byte(content), 0644)
	if err != nil {
		err = fmt.Errorf("failed to write url list: %w", err)
	}
	s.record("save_urls", start, err)
	return err
}

// LoadURLList returns the URL list content, or "" when no list has
// been saved yet.
func (s *FilesystemStore) LoadURLList(ctx context.Context) (string, error) {
	start := time.Now()
	data, err := os.ReadFile(filepath.Join(s.urlsDir(), urlListFileName))
	if os.IsNotExist(err) {
		s.record("load_urls", start, nil)
		return "", nil
	}
	if err != nil {
		err = fmt.Errorf("failed to read url list: %w", err)
	}
	s.record("load_urls", start, err)
	return string(data), err
}

// Health verifies the data directory is present and writable.
func (s *FilesystemStore) Health(ctx context.Context) error {
	start := time.Now()
	err := s.health()
	s.record("health", start, err)
	return err
}

func (s *FilesystemStore) health() error {
	probe := filepath.Join(s.dataDir, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	return os.Remove(probe)
}

// DataDir returns the store's root directory.
func (s *FilesystemStore) DataDir() string {
	return s.dataDir
}

func (s *FilesystemStore) record(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.Record(OperationMetric{
		Operation: op,
		Backend:   "filesystem",
		Duration:  time.Since(start),
		Success:   err == nil,
		Error:     err,
	})
}

// validateName rejects names that would escape the kind directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name is empty")
	}
	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	return nil
}
