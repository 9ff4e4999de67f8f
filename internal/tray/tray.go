// Package tray shows a system tray icon with shortcuts to the monitor page,
// the debug overlay and shutdown.
package tray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/systray"

	"github.com/soar/gamepadbrowse/internal/actions"
)

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// debugPoll is how often the checkbox follows toggles made from the pad.
const debugPoll = 500 * time.Millisecond

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	debug        *actions.DebugFlag
	shutdownFunc ShutdownFunc
	log          *slog.Logger

	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuDebug    *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a tray pointing at url. debug may be nil, in which case the
// overlay checkbox is omitted.
func New(url string, debug *actions.DebugFlag, shutdownFn ShutdownFunc, logger *slog.Logger) *Tray {
	return &Tray{
		url:          url,
		debug:        debug,
		shutdownFunc: shutdownFn,
		log:          logger.With("component", "tray"),
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, t.onExit)
}

// Quit removes the icon and makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("gamepadbrowse")
	systray.SetTooltip("gamepadbrowse - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Monitor", "Open the gamepad monitor page")
	if t.debug != nil {
		t.menuDebug = systray.AddMenuItemCheckbox("Debug Overlay", "Show pressed buttons and axes on the page", t.debug.Enabled())
	}
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	t.log.Info("system tray initialized")
}

// debugClicks returns the checkbox channel, or nil when there is none.
func (t *Tray) debugClicks() <-chan struct{} {
	if t.menuDebug == nil {
		return nil
	}
	return t.menuDebug.ClickedCh
}

func (t *Tray) handleMenuClicks() {
	poll := time.NewTicker(debugPoll)
	defer poll.Stop()

	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.debugClicks():
			on := t.debug.Toggle()
			t.syncDebug(on)
			t.log.Info("debug overlay toggled", "on", on)
		case <-poll.C:
			if t.debug != nil {
				t.syncDebug(t.debug.Enabled())
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) syncDebug(on bool) {
	if t.menuDebug.Checked() == on {
		return
	}
	if on {
		t.menuDebug.Check()
	} else {
		t.menuDebug.Uncheck()
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.log.Info("system tray exiting")
}

// browserCommand returns the command that opens url on goos.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

func (t *Tray) openBrowser() {
	name, args := browserCommand(runtime.GOOS, t.url)
	if err := exec.Command(name, args...).Start(); err != nil {
		t.log.Warn("failed to open browser", "err", err)
	}
}
