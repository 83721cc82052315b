package ingest

import (
	"errors"
	"fmt"

	"github.com/Zuo-Peng/chatview/internal/chat"
)

const (
	DefaultLowerLimit = 1
	DefaultUpperLimit = 100000
)

var ErrInvalidWindow = errors.New("invalid window")

// Window bounds the visible slice of the timeline. Limits are 1-based
// and inclusive.
type Window struct {
	lower int
	upper int
}

func DefaultWindow() Window {
	return Window{lower: DefaultLowerLimit, upper: DefaultUpperLimit}
}

func NewWindow(lower, upper int) (Window, error) {
	if lower < 1 || upper < lower {
		return Window{}, fmt.Errorf("%w: lower=%d upper=%d", ErrInvalidWindow, lower, upper)
	}
	return Window{lower: lower, upper: upper}, nil
}

func (w Window) Lower() int { return w.lower }
func (w Window) Upper() int { return w.upper }

func (w Window) isZero() bool {
	return w.lower == 0 && w.upper == 0
}

// Slice returns the records inside the window. It shares the backing
// array with records.
func (w Window) Slice(records []chat.Message) []chat.Message {
	return sliceWindow(records, w.lower, w.upper)
}

func sliceWindow(records []chat.Message, lower, upper int) []chat.Message {
	start := lower - 1
	if start < 0 {
		start = 0
	}
	if start >= len(records) {
		return []chat.Message{}
	}
	end := upper
	if end > len(records) {
		end = len(records)
	}
	if end < start {
		return []chat.Message{}
	}
	return records[start:end]
}
