// Package hub keeps track of connected browser pages and monitor views.
// Pages form an ordered tab list per window and execute commands sent by
// the action layer; monitors receive the processed input stream.
package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/soar/gamepadbrowse/internal/coordinator"
)

// Role distinguishes page clients from monitor clients.
type Role string

const (
	RoleMonitor Role = "monitor"
	RolePage    Role = "page"
)

const defaultWindow = "main"

type window struct {
	id      string
	tabs    []*Client
	focused uint64
}

// Hub manages WebSocket clients and the tab model built from page
// clients.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	windows  map[string]*window
	focusSeq uint64
	nextID   uint64
	log      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]bool),
		windows: make(map[string]*window),
		log:     logger,
	}
}

// Register adds a new client to the hub. Clients start as monitors until
// they introduce themselves as pages.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.nextID++
	c.id = "tab-" + strconv.FormatUint(h.nextID, 10)
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client connected", "id", c.id, "total", n)
}

// Unregister removes a client from the hub. Unregistering twice is a
// no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	var activated *Client
	if c.role == RolePage {
		activated = h.removeTab(c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if activated != nil {
		h.sendCommand(activated, &Command{Name: CmdActivate, Active: true})
	}
	h.log.Info("client disconnected", "id", c.id, "total", n)
}

// Count returns the number of clients with the given role.
func (h *Hub) Count(role Role) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.role == role {
			n++
		}
	}
	return n
}

// BroadcastToRole sends a message to all clients with the given role.
func (h *Hub) BroadcastToRole(msg []byte, role Role) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.role == role {
			h.trySend(client, msg)
		}
	}
}

// trySend queues msg without blocking. A client whose buffer is full is
// disconnected. Callers hold at least the read lock.
func (h *Hub) trySend(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		go h.Unregister(c)
	}
}

func (h *Hub) send(c *Client, m *WSMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		h.log.Error("marshal message", "type", m.Type, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[c] {
		h.trySend(c, data)
	}
}

func (h *Hub) sendCommand(c *Client, cmd *Command) {
	h.send(c, NewCommandMessage(cmd))
}

// join turns c into a page of the window named in hello.
func (h *Hub) join(c *Client, hello ClientMessage) {
	winID := hello.Window
	if winID == "" {
		winID = defaultWindow
	}

	h.mu.Lock()
	if !h.clients[c] || c.role == RolePage {
		h.mu.Unlock()
		return
	}
	c.role = RolePage
	c.windowID = winID
	c.title = hello.Title
	c.url = hello.URL
	c.width, c.height = hello.Width, hello.Height

	w, ok := h.windows[winID]
	if !ok {
		w = &window{id: winID}
		h.windows[winID] = w
	}
	w.tabs = append(w.tabs, c)
	if active := w.active(); active == nil || hello.Focused {
		h.activate(w, c)
	}
	if hello.Focused {
		h.focusSeq++
		w.focused = h.focusSeq
	}
	h.mu.Unlock()

	h.send(c, NewWelcomeMessage(c.id))
	h.log.Info("page joined", "id", c.id, "window", winID, "url", hello.URL)
}

func (h *Hub) setViewport(c *Client, width, height float64) {
	h.mu.Lock()
	c.width, c.height = width, height
	h.mu.Unlock()
}

// focus marks c as the active tab of the most recently focused window.
func (h *Hub) focus(c *Client) {
	h.mu.Lock()
	w, ok := h.windows[c.windowID]
	if !ok || c.role != RolePage {
		h.mu.Unlock()
		return
	}
	h.focusSeq++
	w.focused = h.focusSeq
	h.activate(w, c)
	h.mu.Unlock()
}

// activate makes target the only active tab of w. Callers hold the write
// lock.
func (h *Hub) activate(w *window, target *Client) {
	for _, t := range w.tabs {
		t.active = t == target
	}
}

// removeTab drops c from its window and activates a neighbour when c was
// active. Callers hold the write lock.
func (h *Hub) removeTab(c *Client) *Client {
	w, ok := h.windows[c.windowID]
	if !ok {
		return nil
	}
	idx := -1
	for i, t := range w.tabs {
		if t == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)
	if len(w.tabs) == 0 {
		delete(h.windows, w.id)
		return nil
	}
	if !c.active {
		return nil
	}
	if idx >= len(w.tabs) {
		idx = len(w.tabs) - 1
	}
	next := w.tabs[idx]
	h.activate(w, next)
	return next
}

func (w *window) active() *Client {
	for _, t := range w.tabs {
		if t.active {
			return t
		}
	}
	return nil
}

func (h *Hub) lastFocused() *window {
	var best *window
	for _, w := range h.windows {
		if best == nil || w.focused > best.focused {
			best = w
		}
	}
	return best
}

// LastFocusedWindow returns a snapshot of the most recently focused window.
func (h *Hub) LastFocusedWindow() (coordinator.Window, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	w := h.lastFocused()
	if w == nil {
		return coordinator.Window{}, false
	}
	out := coordinator.Window{ID: w.id, Tabs: make([]coordinator.Tab, 0, len(w.tabs))}
	for _, t := range w.tabs {
		out.Tabs = append(out.Tabs, coordinator.Tab{ID: t.id, Title: t.title, URL: t.url, Active: t.active})
	}
	return out, true
}

// ActivateTab focuses tabID within windowID and tells both the previous
// and the new active page.
func (h *Hub) ActivateTab(windowID, tabID string) error {
	h.mu.Lock()
	w, ok := h.windows[windowID]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("window %q not found", windowID)
	}
	var target *Client
	for _, t := range w.tabs {
		if t.id == tabID {
			target = t
			break
		}
	}
	if target == nil {
		h.mu.Unlock()
		return fmt.Errorf("tab %q not found in window %q", tabID, windowID)
	}
	prev := w.active()
	h.activate(w, target)
	h.focusSeq++
	w.focused = h.focusSeq
	h.mu.Unlock()

	if prev != nil && prev != target {
		h.sendCommand(prev, &Command{Name: CmdActivate, Active: false})
	}
	h.sendCommand(target, &Command{Name: CmdActivate, Active: true})
	return nil
}
