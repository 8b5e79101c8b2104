package membership

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/foldergraph/pkg/observability"
)

// RootPath is the parent path the host reports for entries at the vault root.
const RootPath = "/"

// Leaf is one file or folder reported by the host.
type Leaf struct {
	Path     string // vault-relative, slash separated
	Parent   string // path of the containing folder, RootPath at the top
	Folder   bool
	Children int // number of direct children, folders only
}

// Entry is one path to group mapping.
type Entry struct {
	Path  string
	Group string
}

// Index is the process-wide path to group table. It is safe for concurrent
// use: a watcher may record leaves while views look groups up.
type Index struct {
	mu     sync.RWMutex
	groups map[string]string
	empty  []string
}

// New returns an empty index.
func New() *Index {
	idx := &Index{}
	idx.Init()
	return idx
}

// Init resets both tables.
func (idx *Index) Init() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.groups = make(map[string]string)
	idx.empty = nil
}

// RecordLeaf ingests one creation event. A file below a non-root folder is
// mapped to that folder, replacing any earlier mapping for the same path. A
// folder without children is appended to the empty groups. Everything else
// is ignored.
func (idx *Index) RecordLeaf(leaf Leaf) {
	switch {
	case !leaf.Folder && leaf.Parent != "" && leaf.Parent != RootPath:
		idx.mu.Lock()
		idx.groups[leaf.Path] = leaf.Parent
		idx.mu.Unlock()
		observability.Index().OnLeafRecorded(context.Background(), leaf.Path, leaf.Parent, false)
	case leaf.Folder && leaf.Children == 0:
		idx.mu.Lock()
		idx.empty = append(idx.empty, leaf.Path)
		idx.mu.Unlock()
		observability.Index().OnLeafRecorded(context.Background(), leaf.Path, "", true)
	}
}

// Lookup returns the group of path.
func (idx *Index) Lookup(path string) (group string, ok bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	group, ok = idx.groups[path]
	return group, ok
}

// EmptyGroups returns the folders that had no children when recorded, in
// recording order. Duplicates are kept.
func (idx *Index) EmptyGroups() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Clone(idx.empty)
}

// Len returns the number of mapped paths.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.groups)
}

// Entries returns all mappings sorted by path.
func (idx *Index) Entries() []Entry {
	idx.mu.RLock()
	entries := make([]Entry, 0, len(idx.groups))
	for p, g := range idx.groups {
		entries = append(entries, Entry{Path: p, Group: g})
	}
	idx.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return entries
}

// Groups returns the distinct groups in use, sorted.
func (idx *Index) Groups() []string {
	idx.mu.RLock()
	seen := make(map[string]struct{})
	for _, g := range idx.groups {
		seen[g] = struct{}{}
	}
	idx.mu.RUnlock()

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	return groups
}
