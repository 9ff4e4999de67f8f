package coordinator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lxzan/gws"
)

// Server exposes a Messenger over websocket. Each text message is one
// JSON Request; each request gets one JSON Response.
type Server struct {
	gws.BuiltinEventHandler

	handler  Messenger
	timeout  time.Duration
	log      *slog.Logger
	upgrader *gws.Upgrader
}

// NewServer wraps handler. timeout bounds each request; zero disables it.
func NewServer(handler Messenger, timeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{handler: handler, timeout: timeout, log: logger}
	s.upgrader = gws.NewUpgrader(s, &gws.ServerOption{
		ParallelEnabled: true,
	})
	return s
}

// ServeHTTP upgrades the request and serves it until the peer closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		s.log.Warn("coordinator upgrade failed", "error", err)
		return
	}
	go socket.ReadLoop()
}

func (s *Server) OnOpen(socket *gws.Conn) {
	s.log.Debug("coordinator peer connected", "remote", socket.RemoteAddr())
}

func (s *Server) OnClose(socket *gws.Conn, err error) {
	s.log.Debug("coordinator peer disconnected", "remote", socket.RemoteAddr(), "error", err)
}

func (s *Server) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var req Request
	if err := json.Unmarshal(message.Bytes(), &req); err != nil {
		s.reply(socket, Response{Error: "malformed request", Code: "invalid_data"})
		return
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	msg, err := s.handler.Send(ctx, req)
	s.reply(socket, responseFor(req.ID, msg, err))
}

func (s *Server) reply(socket *gws.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("coordinator marshal failed", "error", err)
		return
	}
	if err := socket.WriteMessage(gws.OpcodeText, data); err != nil {
		s.log.Warn("coordinator write failed", "error", err)
	}
}
