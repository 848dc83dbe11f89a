// Package watcher observes the inbox directory for dropped report pack files.
// Detected packs are not imported automatically; the agent only surfaces them
// so the user can preview and decide.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// maxRecent caps the retained detection list, newest first.
const maxRecent = 50

// Event records one detected pack file.
type Event struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	DetectedAt time.Time `json:"detected_at"`
}

type Watcher interface {
	Watch(ctx context.Context, dir string) error
	Stop() error
	OnPackDetected(callback func(Event))
	Recent() []Event
}

// InboxWatcher watches a single directory for pack files via fsnotify.
type InboxWatcher struct {
	logger *slog.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	callback func(Event)
	recent   []Event
	seen     map[string]time.Time
}

func NewInboxWatcher(logger *slog.Logger) *InboxWatcher {
	return &InboxWatcher{logger: logger, seen: map[string]time.Time{}}
}

// Watch creates the inbox directory if needed and starts the event loop in
// the background. It returns once the directory is registered.
func (w *InboxWatcher) Watch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	go w.loop(ctx, fsw)

	if w.logger != nil {
		w.logger.Info("watching inbox", "dir", dir)
	}
	return nil
}

func (w *InboxWatcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isPackFile(ev.Name) {
				continue
			}
			w.record(ev.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("inbox watch error", "error", err)
			}
		}
	}
}

// record notes a detection, collapsing the create/write event pairs a single
// file drop produces.
func (w *InboxWatcher) record(path string) {
	now := time.Now()

	w.mu.Lock()
	if last, ok := w.seen[path]; ok && now.Sub(last) < 2*time.Second {
		w.mu.Unlock()
		return
	}
	w.seen[path] = now

	event := Event{Path: path, Name: filepath.Base(path), DetectedAt: now.UTC()}
	w.recent = append([]Event{event}, w.recent...)
	if len(w.recent) > maxRecent {
		w.recent = w.recent[:maxRecent]
	}
	callback := w.callback
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Info("pack detected in inbox", "file", event.Name)
	}
	if callback != nil {
		callback(event)
	}
}

func (w *InboxWatcher) Stop() error {
	w.mu.Lock()
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	if fsw != nil {
		return fsw.Close()
	}
	return nil
}

func (w *InboxWatcher) OnPackDetected(callback func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = callback
}

// Recent returns detections newest first.
func (w *InboxWatcher) Recent() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.recent))
	copy(out, w.recent)
	return out
}

func isPackFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".zip", ".afmpack":
		return true
	default:
		return false
	}
}
