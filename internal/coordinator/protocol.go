// Package coordinator implements the named-action protocol spoken between
// the input pipeline and the privileged coordinator that owns the tab
// list.
package coordinator

import (
	"context"
	"errors"
)

// Action names a request understood by the coordinator.
type Action string

const (
	TabSwitch Action = "TabSwitch"
	Reload    Action = "Reload"
)

// Tab switch directions.
const (
	MoveNext = "next"
	MovePrev = "prev"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidData   = errors.New("invalid request data")
	ErrNoAdjacentTab = errors.New("no adjacent tab")
	ErrNoWindow      = errors.New("no focused window")
)

var errorCodes = map[string]error{
	"unknown_action":  ErrUnknownAction,
	"invalid_data":    ErrInvalidData,
	"no_adjacent_tab": ErrNoAdjacentTab,
	"no_window":       ErrNoWindow,
}

// Data is the optional payload of a request.
type Data struct {
	Move string `json:"move,omitempty"`
}

// Request is a named action. ID correlates requests and responses on a
// shared connection; in-process callers may leave it zero.
type Request struct {
	ID     uint64 `json:"id,omitempty"`
	Action Action `json:"action"`
	Data   *Data  `json:"data,omitempty"`
}

// Response answers a Request. Exactly one of Message or Error is set.
type Response struct {
	ID      uint64 `json:"id,omitempty"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Messenger delivers a request to a coordinator and returns its
// acknowledgement.
type Messenger interface {
	Send(ctx context.Context, req Request) (string, error)
}

// NewTabSwitch builds a TabSwitch request.
func NewTabSwitch(move string) Request {
	return Request{Action: TabSwitch, Data: &Data{Move: move}}
}

// NewReload builds a Reload request.
func NewReload() Request {
	return Request{Action: Reload}
}

func codeFor(err error) string {
	for code, e := range errorCodes {
		if errors.Is(err, e) {
			return code
		}
	}
	return ""
}

// responseFor converts a handler result into a wire response.
func responseFor(id uint64, msg string, err error) Response {
	if err != nil {
		return Response{ID: id, Error: err.Error(), Code: codeFor(err)}
	}
	return Response{ID: id, OK: true, Message: msg}
}

// Err returns the error carried by r, mapped back to its sentinel when the
// code is known.
func (r Response) Err() error {
	if r.OK {
		return nil
	}
	if e, ok := errorCodes[r.Code]; ok {
		return &RemoteError{Message: r.Error, sentinel: e}
	}
	return &RemoteError{Message: r.Error}
}

// RemoteError is a failure reported by a remote coordinator.
type RemoteError struct {
	Message  string
	sentinel error
}

func (e *RemoteError) Error() string {
	return "coordinator: " + e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.sentinel
}
