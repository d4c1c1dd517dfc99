// Copyright © 2024 The Shelly authors

// Package watch reruns an action when the scripts or configuration of a
// project change.
package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is the directory watched recursively.
	Root string

	// Exclude holds glob patterns, relative to Root, of paths to ignore.
	Exclude []string

	// Extensions are the file extensions that trigger a change.
	Extensions []string

	// Names are file base names that trigger a change regardless of
	// extension, such as the project configuration file.
	Names []string

	Debounce time.Duration
	Logger   logrus.FieldLogger
}

// Watcher batches file system events under a directory tree and passes the
// changed paths to a callback.
type Watcher struct {
	opts     Options
	fsw      *fsnotify.Watcher
	excludes []glob.Glob
	onChange func([]string)
	log      logrus.FieldLogger

	callbackMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
}

// New creates a watcher calling onChange with the sorted changed paths.
func New(opts Options, onChange func([]string)) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	opts.Root = root

	w := &Watcher{
		opts:     opts,
		onChange: onChange,
		log:      log,
		pending:  make(map[string]struct{}),
	}
	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		w.excludes = append(w.excludes, g)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	if err := w.addTree(w.opts.Root); err != nil {
		return err
	}
	w.log.WithField("root", w.opts.Root).Info("Watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.excludedDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					w.log.WithError(err).WithField("path", event.Name).Warn("Failed to watch new directory")
				}
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.Relevant(event.Name) {
		return
	}
	w.log.WithField("path", event.Name).Debug("Change detected")
	w.schedule(event.Name)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.opts.Root && w.excludedDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) excluded(path string) bool {
	rel := w.rel(path)
	for _, g := range w.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) excludedDir(path string) bool {
	base := filepath.Base(path)
	return (len(base) > 1 && strings.HasPrefix(base, ".")) || w.excluded(path)
}

// Relevant reports whether a change to path should trigger the callback.
func (w *Watcher) Relevant(path string) bool {
	if w.excluded(path) {
		return false
	}
	base := filepath.Base(path)
	for _, name := range w.opts.Names {
		if base == name {
			return true
		}
	}
	ext := filepath.Ext(base)
	for _, e := range w.opts.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) stop() {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	if err := w.fsw.Close(); err != nil {
		w.log.WithError(err).Debug("Closing watcher")
	}
}
