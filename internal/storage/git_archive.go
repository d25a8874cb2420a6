package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/akshara-labs/akshara/pkg/logging"
)

// GitArchive keeps a commit-per-run history of corpus artifacts in a
// local git repository. Optional: the flat files under data/ remain
// the canonical store, the archive adds provenance.
type GitArchive struct {
	repo     *git.Repository
	repoPath string
	metrics  MetricsCollector
}

// NewGitArchive opens the archive repository, initializing it on first
// use.
func NewGitArchive(repoPath string, metrics MetricsCollector) (*GitArchive, error) {
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	repo, err := git.PlainOpen(repoPath)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(repoPath, false)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive repository: %w", err)
	}
	return &GitArchive{repo: repo, repoPath: repoPath, metrics: metrics}, nil
}

// ArchiveRun copies a run's artifact files into the repository and
// commits them together.
func (g *GitArchive) ArchiveRun(ctx context.Context, runID string, artifactPaths []string, message string) (string, error) {
	start := time.Now()
	hash, err := g.archive(runID, artifactPaths, message)
	g.record("archive", start, err)
	if err != nil {
		return "", err
	}
	logger := logging.GetStorageLogger("archive", "git")
	logger.Info().
		Str("run_id", runID).
		Str("commit", hash).
		Int("artifacts", len(artifactPaths)).
		Msg("Run archived")
	return hash, nil
}

func (g *GitArchive) archive(runID string, artifactPaths []string, message string) (string, error) {
	worktree, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	for _, src := range artifactPaths {
		data, err := os.ReadFile(src)
		if err != nil {
			return "", fmt.Errorf("failed to read artifact for archiving: %w", err)
		}
		rel := filepath.Base(src)
		dst := filepath.Join(g.repoPath, rel)
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return "", fmt.Errorf("failed to copy artifact into archive: %w", err)
		}
		if _, err := worktree.Add(rel); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}

	commit, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "akshara",
			Email: "pipeline@akshara.local",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", runID, err)
	}
	return commit.String(), nil
}

// Health reports whether the repository is usable. A repository with
// no commits yet is healthy.
func (g *GitArchive) Health(ctx context.Context) error {
	_, err := g.repo.Head()
	if err != nil && err != plumbing.ErrReferenceNotFound {
		return fmt.Errorf("archive repository unhealthy: %w", err)
	}
	return nil
}

// Log returns the most recent archive commit messages, newest first.
func (g *GitArchive) Log(limit int) ([]string, error) {
	head, err := g.repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	iter, err := g.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	messages := make([]string, 0, limit)
	for len(messages) < limit {
		c, err := iter.Next()
		if err != nil {
			break
		}
		messages = append(messages, c.Message)
	}
	return messages, nil
}

func (g *GitArchive) record(op string, start time.Time, err error) {
	if g.metrics == nil {
		return
	}
	g.metrics.Record(OperationMetric{
		Operation: op,
		Backend:   "git",
		Duration:  time.Since(start),
		Success:   err == nil,
		Error:     err,
	})
}
