package hub

import (
	"time"

	"github.com/soar/gamepadbrowse/internal/actions"
	"github.com/soar/gamepadbrowse/internal/gamepad"
)

// Message types sent from server to client.
const (
	TypeFull    = "full"
	TypeDelta   = "delta"
	TypeEvent   = "event"
	TypeCommand = "command"
	TypeWelcome = "welcome"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string                `json:"type"`              // "full", "delta", "event", "command" or "welcome"
	Seq       int64                 `json:"seq"`               // Sequence number for ordering
	Timestamp int64                 `json:"timestamp"`         // Unix timestamp in milliseconds
	Data      *gamepad.State        `json:"data,omitempty"`    // Full state for type "full"
	Changes   *gamepad.DeltaChanges `json:"changes,omitempty"` // Changed fields for type "delta"
	Event     *actions.Event        `json:"event,omitempty"`   // Fired action for type "event"
	Command   *Command              `json:"command,omitempty"` // Page command for type "command"
	TabID     string                `json:"tabId,omitempty"`   // Assigned tab id for type "welcome"
}

// Command names understood by page clients.
const (
	CmdScroll      = "scroll"
	CmdPointer     = "pointer"
	CmdShowPointer = "show_pointer"
	CmdClick       = "click"
	CmdHistory     = "history"
	CmdReload      = "reload"
	CmdOverlay     = "overlay"
	CmdActivate    = "activate"
)

// Command is an effect for a page to perform. Absent numeric fields mean 0.
type Command struct {
	Name    string  `json:"name"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	DY      float64 `json:"dy,omitempty"`
	Delta   int     `json:"delta,omitempty"`
	Visible bool    `json:"visible,omitempty"`
	Active  bool    `json:"active,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// NewFullMessage creates a "full" type message containing the complete state.
func NewFullMessage(seq int64, state *gamepad.State) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      state,
	}
}

// NewDeltaMessage creates a "delta" type message containing only changed fields.
func NewDeltaMessage(seq int64, changes *gamepad.DeltaChanges) *WSMessage {
	return &WSMessage{
		Type:      TypeDelta,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// NewEventMessage creates an "event" type message for a fired action.
func NewEventMessage(seq int64, e *actions.Event) *WSMessage {
	return &WSMessage{
		Type:      TypeEvent,
		Seq:       seq,
		Timestamp: e.Time.UnixMilli(),
		Event:     e,
	}
}

// NewCommandMessage wraps a page command.
func NewCommandMessage(cmd *Command) *WSMessage {
	return &WSMessage{
		Type:      TypeCommand,
		Timestamp: time.Now().UnixMilli(),
		Command:   cmd,
	}
}

// NewWelcomeMessage tells a page which tab id it was assigned.
func NewWelcomeMessage(tabID string) *WSMessage {
	return &WSMessage{
		Type:      TypeWelcome,
		Timestamp: time.Now().UnixMilli(),
		TabID:     tabID,
	}
}

// Client message types.
const (
	ClientHello    = "hello"
	ClientViewport = "viewport"
	ClientFocus    = "focus"
)

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type    string  `json:"type"`
	Role    Role    `json:"role,omitempty"`
	Window  string  `json:"window,omitempty"`
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Focused bool    `json:"focused,omitempty"`
}
