//go:build !linux

package gpio

import (
	"errors"
	"log/slog"
)

// Open is not available on non-Linux platforms.
func Open(chip string, pins map[string]int, logger *slog.Logger) (*Source, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}
