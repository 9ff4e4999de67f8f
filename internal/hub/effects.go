package hub

// The hub is the page surface of the action layer: every effect goes to
// the active tab of the most recently focused window.

func (h *Hub) focusedPage() *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if w := h.lastFocused(); w != nil {
		return w.active()
	}
	return nil
}

func (h *Hub) toFocused(cmd *Command) {
	if c := h.focusedPage(); c != nil {
		h.sendCommand(c, cmd)
	}
}

// Viewport returns the size of the focused page.
func (h *Hub) Viewport() (width, height float64, ok bool) {
	c := h.focusedPage()
	if c == nil {
		return 0, 0, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.width, c.height, true
}

func (h *Hub) ScrollBy(dy float64) {
	h.toFocused(&Command{Name: CmdScroll, DY: dy})
}

func (h *Hub) MovePointer(x, y float64) {
	h.toFocused(&Command{Name: CmdPointer, X: x, Y: y})
}

func (h *Hub) ShowPointer(visible bool) {
	h.toFocused(&Command{Name: CmdShowPointer, Visible: visible})
}

func (h *Hub) Click(x, y float64) {
	h.toFocused(&Command{Name: CmdClick, X: x, Y: y})
}

func (h *Hub) History(delta int) {
	h.toFocused(&Command{Name: CmdHistory, Delta: delta})
}

func (h *Hub) Reload() {
	h.toFocused(&Command{Name: CmdReload})
}

func (h *Hub) Overlay(text string) {
	h.toFocused(&Command{Name: CmdOverlay, Text: text})
}
