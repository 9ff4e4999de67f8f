//go:build !windows

package console

import "log/slog"

// Interactive always reports true outside Windows.
func Interactive() bool {
	return true
}

// HandleInterrupt is a no-op outside Windows, where os/signal is reliable.
func HandleInterrupt(shutdown func(), logger *slog.Logger) (rearm func()) {
	return func() {}
}
