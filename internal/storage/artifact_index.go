package storage

import (
	"sync"
)

// ArtifactIndex is an in-memory name lookup over scanned artifacts.
// It is a cache, never persisted; a directory scan rebuilds it. The
// filesystem stays the source of truth.
type ArtifactIndex struct {
	mu    sync.RWMutex
	index map[ArtifactKind]map[string]ArtifactInfo
}

// NewArtifactIndex creates an empty index.
func NewArtifactIndex() *ArtifactIndex {
	return &ArtifactIndex{
		index: make(map[ArtifactKind]map[string]ArtifactInfo),
	}
}

// Add records one artifact.
func (ai *ArtifactIndex) Add(info ArtifactInfo) {
	ai.mu.Lock()
	defer ai.mu.Unlock()

	if ai.index[info.Kind] == nil {
		ai.index[info.Kind] = make(map[string]ArtifactInfo)
	}
	ai.index[info.Kind][info.Name] = info
}

// Get looks up one artifact by kind and name.
func (ai *ArtifactIndex) Get(kind ArtifactKind, name string) (ArtifactInfo, bool) {
	ai.mu.RLock()
	defer ai.mu.RUnlock()

	info, ok := ai.index[kind][name]
	return info, ok
}

// RebuildKind replaces one kind's entries with a fresh scan result.
func (ai *ArtifactIndex) RebuildKind(kind ArtifactKind, infos []ArtifactInfo) {
	ai.mu.Lock()
	defer ai.mu.Unlock()

	entries := make(map[string]ArtifactInfo, len(infos))
	for _, info := range infos {
		entries[info.Name] = info
	}
	ai.index[kind] = entries
}

// Size returns the number of indexed artifacts across all kinds.
func (ai *ArtifactIndex) Size() int {
	ai.mu.RLock()
	defer ai.mu.RUnlock()

	n := 0
	for _, entries := range ai.index {
		n += len(entries)
	}
	return n
}

// Clear empties the index.
func (ai *ArtifactIndex) Clear() {
	ai.mu.Lock()
	defer ai.mu.Unlock()

	ai.index = make(map[ArtifactKind]map[string]ArtifactInfo)
}
