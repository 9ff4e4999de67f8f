package coordinator

import (
	"context"
	"fmt"
	"log/slog"
)

// Tab is one entry of a window's tab list.
type Tab struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Active bool   `json:"active"`
}

// Window is an ordered tab list.
type Window struct {
	ID   string `json:"id"`
	Tabs []Tab  `json:"tabs"`
}

// Tabs is the view of the tab model the coordinator acts on.
type Tabs interface {
	// LastFocusedWindow returns a snapshot of the most recently focused
	// window.
	LastFocusedWindow() (Window, bool)
	// ActivateTab focuses tabID within windowID.
	ActivateTab(windowID, tabID string) error
}

// Coordinator executes named actions against a tab model.
type Coordinator struct {
	tabs Tabs
	log  *slog.Logger
}

// New creates a Coordinator.
func New(tabs Tabs, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{tabs: tabs, log: logger}
}

// Send executes req in-process. It makes Coordinator a Messenger.
func (c *Coordinator) Send(ctx context.Context, req Request) (string, error) {
	return c.Handle(ctx, req)
}

// Handle executes req and returns its acknowledgement. Unknown actions
// fail with ErrUnknownAction.
func (c *Coordinator) Handle(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		msg string
		err error
	)
	switch req.Action {
	case TabSwitch:
		msg, err = c.switchTab(req.Data)
	case Reload:
		// The requester reloads itself once acknowledged.
		msg = "Reloading"
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	if err != nil {
		c.log.Warn("coordinator request failed", "action", req.Action, "error", err)
		return "", err
	}
	c.log.Debug("coordinator request handled", "action", req.Action, "message", msg)
	return msg, nil
}

func (c *Coordinator) switchTab(data *Data) (string, error) {
	if data == nil || (data.Move != MoveNext && data.Move != MovePrev) {
		return "", ErrInvalidData
	}
	win, ok := c.tabs.LastFocusedWindow()
	if !ok {
		return "", ErrNoWindow
	}

	target, ok := adjacentTab(win.Tabs, data.Move)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoAdjacentTab, data.Move)
	}
	if err := c.tabs.ActivateTab(win.ID, target.ID); err != nil {
		return "", fmt.Errorf("activate tab %s: %w", target.ID, err)
	}

	if data.Move == MoveNext {
		return "Next tab!", nil
	}
	return "Prev tab!", nil
}

// adjacentTab returns the tab next to the active one in the requested
// direction. There is no wrap-around.
func adjacentTab(tabs []Tab, move string) (Tab, bool) {
	active := -1
	for i, t := range tabs {
		if t.Active {
			active = i
			break
		}
	}
	if active < 0 {
		return Tab{}, false
	}

	i := active + 1
	if move == MovePrev {
		i = active - 1
	}
	if i < 0 || i >= len(tabs) {
		return Tab{}, false
	}
	return tabs[i], true
}
