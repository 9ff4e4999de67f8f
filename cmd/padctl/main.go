// Command padctl sends coordinator actions to a running gamepadbrowse, the
// same requests the pad's shoulder and Start buttons issue.
//
//	padctl next
//	padctl prev
//	padctl reload
//	padctl raw TabSwitch '{"move":"next"}'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/gamepadbrowse/internal/coordinator"
	"github.com/soar/gamepadbrowse/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(fs *pflag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintln(w, "usage: padctl [flags] next|prev|reload|raw <action> [data-json]")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("padctl", pflag.ContinueOnError)
	url := fs.StringP("url", "u", "ws://localhost:8080/coordinator", "coordinator websocket URL")
	timeout := fs.DurationP("timeout", "t", 2*time.Second, "request timeout")
	verbose := fs.BoolP("verbose", "v", false, "log connection details")
	fs.Usage = usage(fs, stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	req, err := parseRequest(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, "padctl:", err)
		fs.Usage()
		return 2
	}

	logger := logging.Discard()
	if *verbose {
		level, _ := logging.ParseLevel("debug")
		logger = logging.New(stderr, level)
	}

	client, err := coordinator.Dial(*url, logger)
	if err != nil {
		fmt.Fprintln(stderr, "padctl:", err)
		return 1
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	msg, err := client.Send(ctx, req)
	if err != nil {
		fmt.Fprintln(stderr, "padctl:", err)
		return 1
	}
	fmt.Fprintln(stdout, msg)
	return 0
}

// parseRequest maps the positional arguments to a request.
func parseRequest(args []string) (coordinator.Request, error) {
	if len(args) == 0 {
		return coordinator.Request{}, errors.New("missing command")
	}
	switch args[0] {
	case "next":
		return coordinator.NewTabSwitch(coordinator.MoveNext), nil
	case "prev":
		return coordinator.NewTabSwitch(coordinator.MovePrev), nil
	case "reload":
		return coordinator.NewReload(), nil
	case "raw":
		if len(args) < 2 {
			return coordinator.Request{}, errors.New("raw needs an action name")
		}
		req := coordinator.Request{Action: coordinator.Action(args[1])}
		if len(args) > 2 {
			var data coordinator.Data
			if err := json.Unmarshal([]byte(args[2]), &data); err != nil {
				return coordinator.Request{}, fmt.Errorf("parse data: %w", err)
			}
			req.Data = &data
		}
		return req, nil
	default:
		return coordinator.Request{}, fmt.Errorf("unknown command %q", args[0])
	}
}
