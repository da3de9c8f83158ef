package main

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"car-arena/protocol"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 240
)

// Client is one peer's websocket connection. Its send channel is written
// and closed only by the hub goroutine.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	room       string
	remoteAddr string
	codec      protocol.Codec
	log        zerolog.Logger
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a Client with a fresh identity
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr, room string, codec protocol.Codec) *Client {
	id := NewPeerID()
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         id,
		room:       room,
		remoteAddr: remoteAddr,
		codec:      codec,
		log:        hub.log.With().Str("peer", id).Str("room", room).Logger(),
	}
}

// Send queues an encoded frame. A slow peer loses frames rather than
// stalling the room.
func (c *Client) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads frames from the connection and hands params to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.submit(hubCmd{kind: cmdUnregister, client: c})
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("ws error")
			}
			return
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log.Warn().Str("ip", c.remoteAddr).Msg("rate limit exceeded, disconnecting")
			c.hub.analytics.Track(EvtRateLimited, c.room, c.id, "")
			return
		}

		msg, err := protocol.DecodeFrame(msgType == websocket.BinaryMessage, data)
		if err != nil {
			c.log.Warn().Err(err).Msg("malformed frame")
			continue
		}
		if err := msg.ValidateOutbound(); err != nil {
			c.log.Warn().Err(err).Msg("rejected message")
			continue
		}
		if !c.hub.submit(hubCmd{kind: cmdRelay, client: c, msg: msg}) {
			return
		}
	}
}

// WritePump writes queued frames and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
