package server

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jakeisnt/quine/internal/fspath"
	"github.com/jakeisnt/quine/internal/logfields"
)

const debounceWindow = 200 * time.Millisecond

// watchSource watches the source tree and invokes rebuild after changes,
// debounced so one save burst triggers one build. New subdirectories are
// added to the watch as they appear. Blocks until ctx is done.
func (s *Server) watchSource(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	source := s.settings.SourcePath()
	target := s.settings.TargetPath()

	addTree := func(root string) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			p := fspath.Abs(path)
			if p.Under(target) || d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				slog.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(err))
			}
			return nil
		})
	}
	addTree(source.String())

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			p := fspath.Abs(event.Name)
			if p.Under(target) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				addTree(event.Name)
			}
			slog.Debug("Source change detected", logfields.Path(event.Name))
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() { fire <- struct{}{} })
			} else {
				timer.Reset(debounceWindow)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-fire:
			timer = nil
			s.rebuild(ctx)
		}
	}
}
