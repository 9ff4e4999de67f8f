package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/soar/gamepadbrowse/internal/actions"
	"github.com/soar/gamepadbrowse/internal/gamepad"
	"github.com/soar/gamepadbrowse/internal/input"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster streams processed input and fired actions to monitor
// clients. It is a loop sink and an action recorder; both paths only
// enqueue, Run does the broadcasting.
type Broadcaster struct {
	hub    *Hub
	states chan gamepad.State
	events chan actions.Event
	log    *slog.Logger

	mu        sync.Mutex
	lastState gamepad.State
	seq       int64
}

func NewBroadcaster(h *Hub, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		hub:    h,
		states: make(chan gamepad.State, 1),
		events: make(chan actions.Event, 64),
		log:    logger,
	}
}

// StateOf converts a processed frame into a monitor snapshot. The result
// does not share storage with f.
func StateOf(f input.Frame) gamepad.State {
	s := gamepad.State{
		Connected: true,
		Index:     f.Index,
		Name:      f.Name,
		Pressed:   make([]gamepad.PressedButton, 0, f.Pressed.Len()),
		Axes:      append([]float64(nil), f.Axes...),
		Offsets:   append([]float64(nil), f.Offsets...),
	}
	f.Pressed.Each(func(b gamepad.Button, sample gamepad.ButtonSample) {
		s.Pressed = append(s.Pressed, gamepad.PressedButton{ID: int(b), Name: b.String(), Value: sample.Value})
	})
	return s
}

// Deliver queues the snapshot of f. Only the latest snapshot is kept when
// Run falls behind.
func (b *Broadcaster) Deliver(f input.Frame) {
	b.offer(StateOf(f))
}

// Disconnected queues a disconnected snapshot.
func (b *Broadcaster) Disconnected() {
	b.offer(gamepad.State{})
}

func (b *Broadcaster) offer(s gamepad.State) {
	select {
	case b.states <- s:
		return
	default:
	}
	select {
	case <-b.states:
	default:
	}
	select {
	case b.states <- s:
	default:
	}
}

// Record queues a fired action. Events are dropped when the queue is full.
func (b *Broadcaster) Record(e actions.Event) {
	select {
	case b.events <- e:
	default:
		b.log.Debug("event queue full, dropping", "action", e.Action)
	}
}

// Run starts the broadcaster loop and returns when ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case <-ctx.Done():
			return

		case state := <-b.states:
			b.mu.Lock()
			delta := gamepad.ComputeDelta(b.lastState, state)
			b.lastState = state
			if delta.IsEmpty() {
				b.mu.Unlock()
				continue
			}
			b.seq++
			deltaCount++
			seq := b.seq
			b.mu.Unlock()

			// Send full sync periodically
			if deltaCount >= deltaCountSync {
				b.broadcast(NewFullMessage(seq, &state))
				deltaCount = 0
			} else {
				b.broadcast(NewDeltaMessage(seq, delta))
			}

		case e := <-b.events:
			b.broadcast(NewEventMessage(b.nextSeq(), &e))

		case <-ticker.C:
			b.mu.Lock()
			state := b.lastState
			b.mu.Unlock()
			if state.Connected {
				b.broadcast(NewFullMessage(b.nextSeq(), &state))
			}
		}
	}
}

func (b *Broadcaster) nextSeq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	return b.seq
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	b.seq++
	state := b.lastState
	msg := NewFullMessage(b.seq, &state)
	b.mu.Unlock()
	b.hub.send(c, msg)
}

func (b *Broadcaster) broadcast(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("error marshaling message", "type", msg.Type, "error", err)
		return
	}
	b.hub.BroadcastToRole(data, RoleMonitor)
}
