package gpio

import (
	"fmt"
	"sort"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

// Pin binds a button to a line offset.
type Pin struct {
	Button gamepad.Button
	Offset int
}

// ParsePins resolves a button name to offset map, sorted by button.
func ParsePins(pins map[string]int) ([]Pin, error) {
	out := make([]Pin, 0, len(pins))
	seen := make(map[int]gamepad.Button, len(pins))
	for name, offset := range pins {
		b, ok := gamepad.ParseButton(name)
		if !ok {
			return nil, fmt.Errorf("unknown button %q", name)
		}
		if other, dup := seen[offset]; dup {
			return nil, fmt.Errorf("line %d assigned to both %v and %v", offset, other, b)
		}
		seen[offset] = b
		out = append(out, Pin{Button: b, Offset: offset})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Button < out[j].Button })
	return out, nil
}
