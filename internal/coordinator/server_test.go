package coordinator

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func dialTestServer(t *testing.T, tabs Tabs) *Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(New(tabs, quietLogger()), time.Second, quietLogger()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := Dial(url, quietLogger())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientServerRoundTrip(t *testing.T) {
	tabs := &fakeTabs{window: windowWithActive(0, 2), hasWindow: true}
	client := dialTestServer(t, tabs)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg, err := client.Send(ctx, NewTabSwitch(MoveNext))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg != "Next tab!" {
		t.Errorf("unexpected message %q", msg)
	}

	_, err = client.Send(ctx, NewTabSwitch(MoveNext))
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	// fakeTabs does not move the active flag, so tab b is activated again.
	if got := tabs.Activated(); len(got) != 2 {
		t.Errorf("expected 2 activations, got %v", got)
	}
}

func TestClientServerErrors(t *testing.T) {
	client := dialTestServer(t, &fakeTabs{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := client.Send(ctx, Request{Action: "Teleport"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := client.Send(ctx, NewTabSwitch(MovePrev)); !errors.Is(err, ErrNoWindow) {
		t.Errorf("expected ErrNoWindow, got %v", err)
	}
	if msg, err := client.Send(ctx, NewReload()); err != nil || msg != "Reloading" {
		t.Errorf("expected reload acknowledgement, got %q %v", msg, err)
	}
}

func TestClientSendAfterClose(t *testing.T) {
	client := dialTestServer(t, &fakeTabs{})
	client.Close()
	if _, err := client.Send(context.Background(), NewReload()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
