package settings

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events a single save produces
// (temp file create, write, rename).
const watchDebounce = 250 * time.Millisecond

// Watch calls onChange with the freshly loaded record whenever the settings
// file is replaced or written, until ctx is cancelled. The directory is watched
// rather than the file so atomic renames are seen.
func (s *Store) Watch(ctx context.Context, onChange func(LoadResult)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	target, err := filepath.Abs(s.path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("settings path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	go func() {
		defer watcher.Close()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				name, _ := filepath.Abs(event.Name)
				if name != target {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					if ctx.Err() != nil {
						return
					}
					onChange(s.Load())
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[SETTINGS] watcher error: %v", err)
			}
		}
	}()

	return nil
}
