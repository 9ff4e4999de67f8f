package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/gamepadbrowse/internal/actions"
	"github.com/soar/gamepadbrowse/internal/config"
	"github.com/soar/gamepadbrowse/internal/console"
	"github.com/soar/gamepadbrowse/internal/coordinator"
	"github.com/soar/gamepadbrowse/internal/gamepad"
	"github.com/soar/gamepadbrowse/internal/gamepad/sdlreader"
	"github.com/soar/gamepadbrowse/internal/gpio"
	"github.com/soar/gamepadbrowse/internal/hub"
	"github.com/soar/gamepadbrowse/internal/input"
	"github.com/soar/gamepadbrowse/internal/logging"
	"github.com/soar/gamepadbrowse/internal/loop"
	"github.com/soar/gamepadbrowse/internal/mqtt"
	"github.com/soar/gamepadbrowse/internal/server"
	"github.com/soar/gamepadbrowse/internal/statsview"
	"github.com/soar/gamepadbrowse/internal/tray"
)

// os.Interrupt covers Ctrl+C on every platform; SIGTERM is Unix only in
// practice.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "gamepadbrowse:", err)
		os.Exit(1)
	}
}

// deviceSource is a frame source with its own run loop.
type deviceSource interface {
	gamepad.FrameSource
	Run(ctx context.Context) error
}

// gpioRunner ties the GPIO pad's lifetime to ctx.
type gpioRunner struct {
	*gpio.Source
}

func (g gpioRunner) Run(ctx context.Context) error {
	g.Start()
	<-ctx.Done()
	return g.Close()
}

func openSource(cfg config.Config, logger *slog.Logger) (deviceSource, error) {
	if cfg.Device.Source == config.SourceGPIO {
		src, err := gpio.Open(cfg.Device.GPIO.Chip, cfg.Device.GPIO.Pins, logger)
		if err != nil {
			return nil, err
		}
		return gpioRunner{src}, nil
	}
	return sdlreader.NewReader(logger), nil
}

// browseURL is the monitor page address for a listen address.
func browseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func run(args []string) error {
	// Must run before anything captures os.Stderr.
	interactive := console.Interactive()

	cfg, opts, err := config.Load(args)
	if err != nil {
		return err
	}
	if opts.PrintConfig {
		return config.Dump(os.Stdout, cfg)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer cancel()
	rearm := console.HandleInterrupt(cancel, logger)

	source, err := openSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s source: %w", cfg.Device.Source, err)
	}
	if r, ok := source.(*sdlreader.Reader); ok {
		// SDL installs its own console handler during init.
		go func() {
			select {
			case <-r.Ready():
				rearm()
			case <-ctx.Done():
			}
		}()
	}

	proc := input.NewProcessor(source, cfg.ToInputConfig())
	lp := loop.New(source, proc, loop.Options{
		Interval:  cfg.Interval(),
		Quiescent: cfg.Loop.Quiescent,
		Logger:    logger,
	})

	h := hub.NewHub(logger)
	broadcaster := hub.NewBroadcaster(h, logger)

	coord := coordinator.New(h, logger)
	var msgr coordinator.Messenger = coord
	if cfg.Coordinator.URL != "" {
		client, err := coordinator.Dial(cfg.Coordinator.URL, logger)
		if err != nil {
			return fmt.Errorf("dial coordinator: %w", err)
		}
		defer client.Close()
		msgr = client
		logger.Info("using remote coordinator", "url", cfg.Coordinator.URL)
	}

	recorders := actions.Recorders{broadcaster}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.ClientID)
		if err != nil {
			logger.Warn("mqtt relay disabled", "broker", cfg.MQTT.Broker, "err", err)
		} else {
			relay := mqtt.NewRelay(pub, 0, logger)
			go relay.Run(ctx)
			recorders = append(recorders, relay)
			logger.Info("relaying actions to mqtt", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
		}
	}

	debug := &actions.DebugFlag{}
	layer := actions.New(cfg.ToActionsConfig(), h, msgr, actions.Options{
		Suspender: lp,
		Debug:     debug,
		Recorder:  recorders,
		Logger:    logger,
	})
	lp.AddSink(broadcaster)
	lp.AddSink(layer)

	srv, err := server.New(h, broadcaster,
		coordinator.NewServer(coord, cfg.Coordinator.Timeout, logger),
		getFrontendFS(), cfg.Server.Addr, logger)
	if err != nil {
		return err
	}

	if cfg.Stats.Enabled {
		v := statsview.Launch(cfg.Stats.Addr, logger)
		defer v.Stop()
	}

	errCh := make(chan error, 3)
	go broadcaster.Run(ctx)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := lp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("sampling loop: %w", err)
		}
	}()
	sourceDone := make(chan struct{})
	go func() {
		defer close(sourceDone)
		if err := source.Run(ctx); err != nil {
			errCh <- fmt.Errorf("device source: %w", err)
		}
	}()

	url := browseURL(cfg.Server.Addr)
	logger.Info("gamepadbrowse started", "url", url, "source", cfg.Device.Source)

	var t *tray.Tray
	if cfg.Tray.Enabled || !interactive {
		t = tray.New(url, debug, func() { cancel() }, logger)
		go t.Run(tray.Icon())
	} else {
		logger.Info("press Ctrl+C to exit")
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		logger.Error("fatal error", "err", runErr)
		cancel()
	}

	<-sourceDone
	if t != nil {
		t.Quit()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "err", err)
	}

	logger.Info("gamepadbrowse stopped")
	return runErr
}
