package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lxzan/gws"
)

// ErrClosed is returned by Send once the connection is gone.
var ErrClosed = errors.New("coordinator connection closed")

// Client is a Messenger talking to a remote Server. It is safe for
// concurrent use; responses are matched to requests by ID.
type Client struct {
	gws.BuiltinEventHandler

	socket *gws.Conn
	log    *slog.Logger
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan Response
	closed  bool
	done    chan struct{}
}

// Dial connects to the coordinator at url (ws:// or wss://).
func Dial(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		log:     logger,
		pending: make(map[uint64]chan Response),
		done:    make(chan struct{}),
	}
	socket, _, err := gws.NewClient(c, &gws.ClientOption{Addr: url})
	if err != nil {
		return nil, fmt.Errorf("dial coordinator %s: %w", url, err)
	}
	c.socket = socket
	go socket.ReadLoop()
	return c, nil
}

// Send writes req and waits for the matching response or ctx.
func (c *Client) Send(ctx context.Context, req Request) (string, error) {
	req.ID = c.nextID.Add(1)
	ch := make(chan Response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer c.forget(req.ID)

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	if err := c.socket.WriteMessage(gws.OpcodeText, data); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	select {
	case resp := <-ch:
		if err := resp.Err(); err != nil {
			return "", err
		}
		return resp.Message, nil
	case <-c.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close closes the connection. Pending sends fail with ErrClosed.
func (c *Client) Close() error {
	c.socket.WriteClose(1000, nil)
	c.shutdown()
	return nil
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

func (c *Client) OnClose(socket *gws.Conn, err error) {
	c.log.Debug("coordinator connection closed", "error", err)
	c.shutdown()
}

func (c *Client) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var resp Response
	if err := json.Unmarshal(message.Bytes(), &resp); err != nil {
		c.log.Warn("malformed coordinator response", "error", err)
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	c.mu.Unlock()
	if !ok {
		c.log.Debug("unmatched coordinator response", "id", resp.ID)
		return
	}
	select {
	case ch <- resp:
	default:
	}
}
