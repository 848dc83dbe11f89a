package ui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

// Status is the snapshot the tray renders.
type Status struct {
	Busy      bool
	QueueLen  int
	UndoArmed bool
}

type Tray struct {
	logger *slog.Logger
	status func() Status

	statusItem *systray.MenuItem
	queueItem  *systray.MenuItem
	undoItem   *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Logger *slog.Logger
	Status func() Status
	OnQuit func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		logger: cfg.Logger,
		status: cfg.Status,
		onQuit: cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("AFM")
	systray.SetTooltip("AFM Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.queueItem = systray.AddMenuItem("Queue: 0 clips", "Report queue size")
	t.queueItem.Disable()

	t.undoItem = systray.AddMenuItem("Undo: none", "Whether the last import can be undone")
	t.undoItem.Disable()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit AFM Agent")

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.refresh()
	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refresh() {
	if t.status == nil {
		return
	}
	s := t.status()

	t.mu.Lock()
	defer t.mu.Unlock()

	if s.Busy {
		t.statusItem.SetTitle("Status: Working")
	} else {
		t.statusItem.SetTitle("Status: Idle")
	}
	t.queueItem.SetTitle(fmt.Sprintf("Queue: %d clips", s.QueueLen))
	if s.UndoArmed {
		t.undoItem.SetTitle("Undo: last import")
	} else {
		t.undoItem.SetTitle("Undo: none")
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
