// Package session keeps the backend session cookie current while the
// monitor runs: the config file is watched and a changed cookie is swapped
// into the client's jar.
package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/snapcurator/internal/checksum"
)

const debounce = 200 * time.Millisecond

// Setter stores a session cookie. *request.Client satisfies it.
type Setter interface {
	SetSession(name, value string)
}

// Tracker applies session cookies to a Setter, skipping repeats.
type Tracker struct {
	setter Setter

	mu    sync.Mutex
	name  string
	value string
}

// NewTracker creates a tracker that writes to s.
func NewTracker(s Setter) *Tracker {
	return &Tracker{setter: s}
}

// Apply stores the cookie when it differs from the last applied one and
// reports whether it did.
func (t *Tracker) Apply(name, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if name == "" || value == "" || (name == t.name && value == t.value) {
		return false
	}
	t.name, t.value = name, value
	t.setter.SetSession(name, value)
	return true
}

// Watch calls reload whenever the content of file changes, until ctx is
// cancelled. The parent directory is watched so editors that replace the
// file on save are handled. Bursts of events are debounced.
func Watch(ctx context.Context, file string, logger *slog.Logger, reload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	last := digest(abs)
	logger.Info("session watcher: started", slog.String("file", abs))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session watcher: stopped")
			return nil

		case <-timerCh:
			sum := digest(abs)
			if sum == "" || sum == last {
				continue
			}
			last = sum
			logger.Debug("session watcher: file changed", slog.String("file", abs))
			reload()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerCh = timer.C
			} else {
				timer.Reset(debounce)
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("session watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// digest returns the checksum of file, or "" when it cannot be read.
func digest(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("session watcher: read failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return checksum.Sum(data)
}
