// Package replication keeps peers' views of each other's vehicles in step by
// publishing the local vehicle and applying the field sets peers publish.
package replication

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"car-arena/protocol"
	"car-arena/sim"
)

// Client publishes the local vehicle and applies remote updates to a World.
// It is not safe for concurrent use; every method runs on the session's
// goroutine.
type Client struct {
	world     *sim.World
	transport Transport
	connected bool
	log       zerolog.Logger

	last    fieldSet
	hasLast bool

	sent    uint64
	applied uint64
}

// NewClient creates a client over world with no transport attached
func NewClient(world *sim.World, log zerolog.Logger) *Client {
	return &Client{
		world: world,
		log:   log.With().Str("component", "replication").Logger(),
	}
}

// Attach sets the transport. Publishing starts once it reports connected.
func (c *Client) Attach(t Transport) {
	c.transport = t
	c.connected = false
	c.hasLast = false
}

// Connected reports whether the channel is up
func (c *Client) Connected() bool {
	return c.connected
}

// Stats returns the number of messages sent and remote updates applied
func (c *Client) Stats() (sent, applied uint64) {
	return c.sent, c.applied
}

// PublishIfChanged sends v when any publishable field differs from the last
// send. Intents are compared after quantization.
func (c *Client) PublishIfChanged(v *sim.Vehicle) {
	if !c.connected {
		return
	}
	fs := capture(v)
	if c.hasLast && fs == c.last {
		return
	}
	if err := c.send(fs); err != nil {
		c.log.Warn().Err(err).Msg("publish failed")
	}
}

// Publish sends v unconditionally
func (c *Client) Publish(v *sim.Vehicle) error {
	if !c.connected || c.transport == nil {
		return ErrNotConnected
	}
	return c.send(capture(v))
}

func (c *Client) send(fs fieldSet) error {
	if err := c.transport.Send(protocol.ParamsFrom("", fs.params())); err != nil {
		return fmt.Errorf("send params: %w", err)
	}
	c.last = fs
	c.hasLast = true
	c.sent++
	return nil
}

// ApplyRemote writes the fields present in p onto the vehicle for id,
// creating it on first sight. Remote vehicles are never integrated.
func (c *Client) ApplyRemote(id string, p protocol.Params) error {
	v, created, err := c.world.Peers().GetOrCreate(id)
	if err != nil {
		return fmt.Errorf("apply %s: %w", id, err)
	}
	if created {
		c.log.Info().Str("peer", id).Msg("peer vehicle created")
	}
	apply(v, p)
	c.applied++
	return nil
}

// RemovePeer deletes the vehicle for id
func (c *Client) RemovePeer(id string) error {
	if err := c.world.Peers().Remove(id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// Handle processes one transport event
func (c *Client) Handle(ev Event) {
	switch ev.Kind {
	case EventConnected:
		c.connected = true
		c.log.Info().Msg("connected")
		c.forcePublish()

	case EventDisconnected:
		if !c.connected {
			return
		}
		c.connected = false
		c.hasLast = false
		c.world.FreezeRemote()
		if ev.Err != nil {
			c.log.Error().Err(ev.Err).Msg("channel lost, remote vehicles frozen")
		} else {
			c.log.Info().Msg("channel closed")
		}

	case EventMessage:
		c.handleMessage(ev.Msg)
	}
}

func (c *Client) handleMessage(m protocol.Message) {
	if err := m.Validate(); err != nil {
		c.log.Warn().Err(err).Msg("dropping malformed message")
		return
	}
	switch m.T {
	case protocol.MsgWelcome:
		c.world.Peers().SetSelf(m.ID)
		c.log.Info().Str("id", m.ID).Msg("identity assigned")

	case protocol.MsgJoin:
		if m.ID == c.world.Peers().Self() {
			return
		}
		c.world.Peers().Announce(m.ID)
		c.log.Debug().Str("peer", m.ID).Msg("peer joined")
		c.forcePublish()

	case protocol.MsgParams:
		if err := c.ApplyRemote(m.ID, *m.Params); err != nil {
			c.log.Warn().Err(err).Msg("ignoring params")
		}

	case protocol.MsgLeave:
		err := c.RemovePeer(m.ID)
		switch {
		case errors.Is(err, sim.ErrUnknownPeer):
			c.log.Warn().Str("peer", m.ID).Msg("leave for unknown peer")
		case err != nil:
			c.log.Warn().Err(err).Msg("leave failed")
		default:
			c.log.Debug().Str("peer", m.ID).Msg("peer left")
		}
	}
}

func (c *Client) forcePublish() {
	if err := c.Publish(c.world.Local()); err != nil {
		c.log.Warn().Err(err).Msg("full publish failed")
	}
}

// Disconnect closes the transport. Calling it again is a no-op.
func (c *Client) Disconnect() {
	if c.transport == nil {
		return
	}
	if err := c.transport.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close transport")
	}
	c.transport = nil
	c.connected = false
	c.hasLast = false
}
