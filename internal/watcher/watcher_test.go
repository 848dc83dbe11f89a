package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsPackFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"pack.json", true},
		{"PACK.JSON", true},
		{"bundle.zip", true},
		{"matchday.afmpack", true},
		{"readme.txt", false},
		{"noext", false},
	}
	for _, tc := range cases {
		if got := isPackFile(tc.path); got != tc.want {
			t.Errorf("isPackFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestWatch_DetectsDroppedPack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	w := NewInboxWatcher(nil)
	t.Cleanup(func() { w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	detected := make(chan Event, 1)
	w.OnPackDetected(func(e Event) {
		select {
		case detected <- e:
		default:
		}
	})

	if err := w.Watch(ctx, dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("inbox dir not created: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "matchday.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("dropping file: %v", err)
	}

	select {
	case e := <-detected:
		if e.Name != "matchday.json" {
			t.Errorf("detected %q", e.Name)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no detection for dropped pack")
	}

	recent := w.Recent()
	if len(recent) != 1 || recent[0].Name != "matchday.json" {
		t.Errorf("Recent() = %+v", recent)
	}
}

func TestWatch_IgnoresNonPackFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	w := NewInboxWatcher(nil)
	t.Cleanup(func() { w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := w.Watch(ctx, dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("dropping file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := w.Recent(); len(got) != 0 {
		t.Errorf("Recent() = %+v, want empty", got)
	}
}

func TestRecord_CollapsesEventBursts(t *testing.T) {
	w := NewInboxWatcher(nil)

	w.record("/inbox/pack.json")
	w.record("/inbox/pack.json")

	if got := len(w.Recent()); got != 1 {
		t.Errorf("Recent() len = %d, want 1", got)
	}
}
