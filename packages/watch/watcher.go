// Package watch re-runs a callback when watched files change. Bursts of
// events are debounced into one call and calls are throttled by a rate
// limiter.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/sethetter/reqq/packages/logging"
)

const (
	DefaultDebounce    = 300 * time.Millisecond
	DefaultMinInterval = time.Second
)

type Config struct {
	// Paths are files or directories. Directories are watched recursively.
	Paths []string

	// Match selects which changed files count. nil matches everything.
	Match func(path string) bool

	Debounce time.Duration

	// MinInterval is the shortest time between two OnChange calls.
	MinInterval time.Duration

	OnChange func(ctx context.Context, changed []string) error

	Logger *log.Logger
}

type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	limiter *rate.Limiter
	logger  *log.Logger
	dirs    map[string]bool
}

func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		dirs:    make(map[string]bool),
	}

	for _, p := range cfg.Paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// add watches path. Files are watched through their directory so that
// editors replacing the file on save are still seen.
func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	if !info.IsDir() {
		return w.addDir(filepath.Dir(path))
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.addDir(p)
		}
		return nil
	})
}

func (w *Watcher) addDir(dir string) error {
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dirs[dir] = true
	w.logger.Debug("watching", "dir", dir)
	return nil
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
		return false
	}
	return w.cfg.Match == nil || w.cfg.Match(evt.Name)
}

// Run blocks until ctx is done, calling OnChange with the sorted list of
// changed paths after each debounced burst.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.add(evt.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "dir", evt.Name, "err", err)
					}
					continue
				}
			}

			if !w.relevant(evt) {
				continue
			}

			pending[evt.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.cfg.Debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}

			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Debug("change detected", "files", len(changed))
			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil {
					w.logger.Warn("re-execution failed", "err", err)
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}
