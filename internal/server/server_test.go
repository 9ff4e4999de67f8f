package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soar/gamepadbrowse/internal/coordinator"
	"github.com/soar/gamepadbrowse/internal/hub"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var frontend = fstest.MapFS{
	"index.html": {Data: []byte("<!DOCTYPE html>\n<html>\n  <body>\n    <p>  hello  </p>\n  </body>\n</html>\n")},
	"overlay.js": {Data: []byte("function  add ( a , b ) {\n  return a + b ;\n}\n")},
	"style.css":  {Data: []byte("body {\n  margin : 0px ;\n}\n")},
	"icon.txt":   {Data: []byte("keep  as  is")},
}

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	h := hub.NewHub(quietLogger())
	b := hub.NewBroadcaster(h, quietLogger())
	coord := coordinator.NewServer(coordinator.New(h, quietLogger()), time.Second, quietLogger())

	srv, err := New(h, b, coord, frontend, ":0", quietLogger())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, h
}

func get(t *testing.T, url string) (string, *http.Response) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body), resp
}

func TestServesMinifiedFrontend(t *testing.T) {
	ts, _ := newTestServer(t)

	body, resp := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if strings.Contains(body, "\n  ") || !strings.Contains(body, "hello") {
		t.Errorf("expected minified html, got %q", body)
	}

	body, _ = get(t, ts.URL+"/style.css")
	if strings.Contains(body, "\n") || !strings.Contains(body, "margin:0") {
		t.Errorf("expected minified css, got %q", body)
	}

	body, _ = get(t, ts.URL+"/overlay.js")
	if strings.Contains(body, "\n  ") {
		t.Errorf("expected minified js, got %q", body)
	}

	body, _ = get(t, ts.URL+"/icon.txt")
	if body != "keep  as  is" {
		t.Errorf("unknown types should pass through, got %q", body)
	}

	if _, resp := get(t, ts.URL+"/missing.js"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPageJoinsOverWebSocket(t *testing.T) {
	ts, h := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := hub.ClientMessage{Type: hub.ClientHello, Role: hub.RolePage, Window: "w", Width: 640, Height: 480, Focused: true}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m hub.WSMessage
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatal(err)
		}
		if m.Type == hub.TypeWelcome {
			if m.TabID == "" {
				t.Error("welcome should carry a tab id")
			}
			break
		}
	}

	if w, hgt, ok := h.Viewport(); !ok || w != 640 || hgt != 480 {
		t.Errorf("expected joined page viewport, got %v x %v (%v)", w, hgt, ok)
	}
}

func TestCoordinatorEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	client, err := coordinator.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/coordinator", quietLogger())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if msg, err := client.Send(ctx, coordinator.NewReload()); err != nil || msg == "" {
		t.Errorf("expected reload acknowledgement, got %q %v", msg, err)
	}
}
