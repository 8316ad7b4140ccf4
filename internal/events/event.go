// Package events carries serial monitor output from reader goroutines to
// whatever renders it.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes a line of device output from a monitor failure
type Kind int

const (
	SerialMessage Kind = iota
	SerialError
)

func (k Kind) String() string {
	switch k {
	case SerialMessage:
		return "serial-message"
	case SerialError:
		return "serial-error"
	default:
		return "unknown"
	}
}

// Event is one notification emitted by a serial reader
type Event struct {
	Kind    Kind
	Session uuid.UUID
	Port    string
	Text    string
	Time    time.Time
}

// Sink receives events. Implementations must not block for long: the reader
// calls Emit from its read loop.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(Event)

// Emit calls f(e)
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})
