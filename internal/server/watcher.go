package server

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type watcher struct {
	fsw *fsnotify.Watcher
	wg  sync.WaitGroup
}

// watch reloads clients after changes under dir settle for s.Debounce.
func (s *Server) watch(ctx context.Context, dir string) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addRecursive(fsw, dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &watcher{fsw: fsw}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		var debounceTimer *time.Timer
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					return
				}
				if event.Op&fsnotify.Chmod != 0 {
					continue
				}
				if event.Op&fsnotify.Create != 0 {
					// new directories need their own watch
					_ = addRecursive(fsw, event.Name)
				}

				if debounceTimer != nil {
					debounceTimer.Reset(s.Debounce)
				} else {
					debounceTimer = time.AfterFunc(s.Debounce, func() { s.reload(ctx) })
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Watcher error", "error", err)
			}
		}
	}()
	return w, nil
}

// reload runs one rebuild at a time; a save landing mid-rebuild waits for
// it. Nothing runs once ctx is done.
func (s *Server) reload(ctx context.Context) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if s.Rebuild != nil {
		if err := s.Rebuild(); err != nil {
			s.logger.Error("Rebuild failed", "error", err)
			return
		}
	}
	s.hub.broadcast()
}

func (w *watcher) stop() {
	_ = w.fsw.Close()
	w.wg.Wait()
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
