package replication

import (
	"errors"

	"car-arena/protocol"
)

// ErrNotConnected is returned when publishing without a live channel
var ErrNotConnected = errors.New("not connected")

// EventKind classifies a transport event
type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventMessage
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventMessage:
		return "message"
	case EventDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Event is delivered by a Transport in arrival order
type Event struct {
	Kind EventKind
	Msg  protocol.Message
	Err  error
}

// Transport is the message channel to the relay. Send never blocks; Events
// is closed once the channel is gone for good.
type Transport interface {
	Send(m protocol.Message) error
	Events() <-chan Event
	Close() error
}
