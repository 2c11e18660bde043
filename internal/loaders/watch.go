package loaders

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/logger"
)

// DefaultDebounce is the quiet period before a change burst is reported.
const DefaultDebounce = 2 * time.Second

// Watch reports changes to loadable files under root. One value is sent
// on the returned channel per burst of changes, after debounce has
// elapsed without further events. The channel closes when ctx is done.
func Watch(ctx context.Context, root string, debounce time.Duration) (<-chan struct{}, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", root)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(watcher, root); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()
		pending := false

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !handleFsEvent(watcher, event) {
					continue
				}
				pending = true
				timer.Reset(debounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", root, err)

			case <-timer.C:
				if !pending {
					continue
				}
				pending = false
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// handleFsEvent reports whether event touches a loadable file. New
// directories are added to the watcher.
func handleFsEvent(w *fsnotify.Watcher, event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if isHidden(name) || skipDirs[name] {
		return false
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addTree(w, event.Name); err != nil {
				logger.Warn("watch %s: %v", event.Name, err)
			}
			return false
		}
	}
	return isLoadable(event.Name)
}

// isLoadable reports whether any category loads the file.
var isLoadable = extensionMatcher(allExtensions())

func allExtensions() []string {
	var exts []string
	for _, c := range domain.AllCategories() {
		exts = append(exts, c.Extensions()...)
	}
	return exts
}

// addTree watches dir and every non-skipped directory beneath it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (isHidden(d.Name()) || skipDirs[d.Name()]) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
