package membership

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/foldergraph/pkg/errors"
)

// Watcher records files and folders created under a vault after it was
// scanned. Removals and renames are ignored; the index keeps stale entries.
type Watcher struct {
	root     string
	idx      *Index
	fsw      *fsnotify.Watcher
	logger   *log.Logger
	onRecord func(Leaf)
}

// WatchOption configures a [Watcher].
type WatchOption func(*Watcher)

// WithWatchLogger sets the logger for watch events. The default discards
// output.
func WithWatchLogger(l *log.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

// WithOnRecord registers a callback invoked after every recorded leaf.
func WithOnRecord(fn func(Leaf)) WatchOption {
	return func(w *Watcher) { w.onRecord = fn }
}

// NewWatcher starts watching root and every visible folder below it.
// Call [Watcher.Run] to process events and [Watcher.Close] when done.
func NewWatcher(root string, idx *Index, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeWatchFailed, err, "create watcher")
	}
	w := &Watcher{
		root:   root,
		idx:    idx,
		fsw:    fsw,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root, false); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string {
	return w.fsw.WatchList()
}

// Run processes filesystem events until ctx is done or the watcher is
// closed. It returns ctx.Err() on cancellation and nil after Close.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// Close stops watching. Run returns once Close has been called.
func (w *Watcher) Close() error {
	if err := w.fsw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeWatchFailed, err, "close watcher")
	}
	return nil
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			w.logger.Debug("ignoring removal", "path", ev.Name)
		}
		return
	}
	if w.hidden(ev.Name) {
		return
	}
	leaf, err := LeafAt(w.root, ev.Name)
	if err != nil {
		// Created and removed again before we got to it.
		w.logger.Debug("skipping create", "path", ev.Name, "err", err)
		return
	}
	w.record(leaf)
	if leaf.Folder {
		if err := w.addTree(ev.Name, true); err != nil {
			w.logger.Warn("watch folder", "path", leaf.Path, "err", err)
		}
	}
}

// addTree watches dir and its visible subfolders. With record set, the
// entries below dir are recorded too, since fsnotify reports nothing for
// content that arrived together with a new folder.
func (w *Watcher) addTree(dir string, record bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeWatchFailed, err, "walk %s", p)
		}
		if p != dir && Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(p); err != nil {
				return errors.Wrap(errors.ErrCodeWatchFailed, err, "watch %s", p)
			}
			w.logger.Debug("watching", "dir", p)
		}
		if record && p != dir {
			if leaf, err := LeafAt(w.root, p); err == nil {
				w.record(leaf)
			}
		}
		return nil
	})
}

func (w *Watcher) record(leaf Leaf) {
	w.idx.RecordLeaf(leaf)
	w.logger.Debug("recorded", "path", leaf.Path, "parent", leaf.Parent, "folder", leaf.Folder)
	if w.onRecord != nil {
		w.onRecord(leaf)
	}
}

func (w *Watcher) hidden(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if Hidden(seg) {
			return true
		}
	}
	return false
}
