//go:build linux

package gpio

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

// Open requests every pinned line on chip as an active-low input with
// pull-up, so a button shorting the line to ground reads as 1.
func Open(chip string, pins map[string]int, logger *slog.Logger) (*Source, error) {
	parsed, err := ParsePins(pins)
	if err != nil {
		return nil, err
	}

	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	defer c.Close()

	lines := make(map[gamepad.Button]Line, len(parsed))
	for _, p := range parsed {
		l, err := c.RequestLine(p.Offset, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
		if err != nil {
			for _, prev := range lines {
				prev.Close()
			}
			return nil, fmt.Errorf("request %v line %d: %w", p.Button, p.Offset, err)
		}
		lines[p.Button] = &realLine{l}
	}
	return NewSource(lines, logger), nil
}

type realLine struct {
	*gpiocdev.Line
}

// Close restores the boot default before releasing the line.
func (l *realLine) Close() error {
	if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		l.Line.Close()
		return fmt.Errorf("reconfigure: %w", err)
	}
	return l.Line.Close()
}
