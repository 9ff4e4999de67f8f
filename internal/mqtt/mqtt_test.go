package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/soar/gamepadbrowse/internal/actions"
	"github.com/soar/gamepadbrowse/internal/logging"
)

func TestFormatPayload(t *testing.T) {
	event := actions.Event{
		Time:   time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Action: actions.ActionTabSwitch,
		Detail: "next",
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Action.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Action.Timestamp)
	}
	if parsed.Action.Name != "tab_switch" {
		t.Errorf("unexpected name: %s", parsed.Action.Name)
	}
	if parsed.Action.Detail != "next" {
		t.Errorf("unexpected detail: %s", parsed.Action.Detail)
	}
}

func TestFormatPayloadOmitsEmptyFields(t *testing.T) {
	payload, err := FormatPayload(actions.Event{Time: time.Unix(0, 0), Action: actions.ActionClick})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["action"]["detail"]; ok {
		t.Error("empty detail should be omitted")
	}
	if _, ok := raw["action"]["error"]; ok {
		t.Error("empty error should be omitted")
	}
}

func runRelay(t *testing.T, pub *FakePublisher) (*Relay, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	r := NewRelay(pub, 4, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	return r, cancel, done
}

func TestRelayPublishesInOrder(t *testing.T) {
	pub := NewFakePublisher()
	pub.Published = make(chan actions.Event, 4)
	r, cancel, done := runRelay(t, pub)

	r.Record(actions.Event{Action: actions.ActionHistory, Detail: "-1"})
	r.Record(actions.Event{Action: actions.ActionReload})

	for i := 0; i < 2; i++ {
		select {
		case <-pub.Published:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for publish")
		}
	}
	cancel()
	<-done

	events := pub.Events()
	if len(events) != 2 || events[0].Action != actions.ActionHistory || events[1].Action != actions.ActionReload {
		t.Errorf("unexpected events %+v", events)
	}
	if len(pub.Payloads()) != 2 {
		t.Errorf("expected 2 payloads, got %d", len(pub.Payloads()))
	}
	if !pub.Closed() {
		t.Error("publisher should be closed when the relay stops")
	}
}

func TestRelayDropsWhenFull(t *testing.T) {
	pub := NewFakePublisher()
	r := NewRelay(pub, 2, logging.Discard())

	for i := 0; i < 5; i++ {
		r.Record(actions.Event{Action: actions.ActionClick})
	}
	if len(r.events) != 2 {
		t.Errorf("expected 2 buffered events, got %d", len(r.events))
	}
}

func TestRelaySurvivesPublishErrors(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	r, cancel, done := runRelay(t, pub)

	r.Record(actions.Event{Action: actions.ActionClick})
	r.Record(actions.Event{Action: actions.ActionClick})

	deadline := time.After(time.Second)
	for len(r.events) > 0 {
		select {
		case <-deadline:
			t.Fatal("relay did not drain its buffer")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	if len(pub.Events()) != 0 {
		t.Errorf("failed publishes should not be recorded, got %d", len(pub.Events()))
	}
}
