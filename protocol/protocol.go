// Package protocol defines the messages exchanged between peers through the
// relay and their JSON and msgpack encodings.
package protocol

import (
	"errors"
	"fmt"
)

// Message types
const (
	MsgWelcome = "welcome" // relay -> newcomer: your identity
	MsgJoin    = "join"    // relay -> room: a peer attached
	MsgParams  = "params"  // peer -> room: vehicle field set
	MsgLeave   = "leave"   // relay -> room: a peer detached
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMissingID   = errors.New("message missing peer id")
	ErrMissingBody = errors.New("params message without fields")
)

// Message is the single envelope used on the wire. ID is assigned by the
// relay and ignored when a peer sends it.
type Message struct {
	T      string  `json:"t" msgpack:"t"`
	ID     string  `json:"id,omitempty" msgpack:"id,omitempty"`
	Params *Params `json:"p,omitempty" msgpack:"p,omitempty"`
}

// Welcome builds the identity assignment sent to a new connection
func Welcome(id string) Message { return Message{T: MsgWelcome, ID: id} }

// Join builds a join notification
func Join(id string) Message { return Message{T: MsgJoin, ID: id} }

// Leave builds a leave notification
func Leave(id string) Message { return Message{T: MsgLeave, ID: id} }

// ParamsFrom builds a params message carrying p
func ParamsFrom(id string, p Params) Message {
	return Message{T: MsgParams, ID: id, Params: &p}
}

// Validate checks a message received from the relay
func (m Message) Validate() error {
	switch m.T {
	case MsgWelcome, MsgJoin, MsgLeave:
	case MsgParams:
		if m.Params == nil {
			return ErrMissingBody
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, m.T)
	}
	if m.ID == "" {
		return fmt.Errorf("%s: %w", m.T, ErrMissingID)
	}
	return nil
}

// ValidateOutbound checks a message a peer sends to the relay. Peers only
// ever send params; the relay stamps the identity.
func (m Message) ValidateOutbound() error {
	if m.T != MsgParams {
		return fmt.Errorf("%w: %q", ErrUnknownType, m.T)
	}
	if m.Params == nil {
		return ErrMissingBody
	}
	return nil
}
