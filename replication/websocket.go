package replication

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"car-arena/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	eventBufSize   = 256
)

// WSTransport is a Transport over a gorilla websocket connection
type WSTransport struct {
	conn   *websocket.Conn
	codec  protocol.Codec
	send   chan []byte
	events chan Event
	done   chan struct{}
	log    zerolog.Logger

	closeOnce sync.Once
}

// Dial connects to the relay at url and starts the read and write pumps.
// The first event delivered is EventConnected.
func Dial(ctx context.Context, url string, codec protocol.Codec, log zerolog.Logger) (*WSTransport, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	t := newWSTransport(conn, codec, log)
	t.events <- Event{Kind: EventConnected}
	go t.writePump()
	go t.readPump()
	return t, nil
}

func newWSTransport(conn *websocket.Conn, codec protocol.Codec, log zerolog.Logger) *WSTransport {
	if codec == nil {
		codec = protocol.JSONCodec{}
	}
	return &WSTransport{
		conn:   conn,
		codec:  codec,
		send:   make(chan []byte, sendBufSize),
		events: make(chan Event, eventBufSize),
		done:   make(chan struct{}),
		log:    log.With().Str("component", "ws").Str("codec", codec.Name()).Logger(),
	}
}

// Events implements Transport
func (t *WSTransport) Events() <-chan Event {
	return t.events
}

// Send encodes m and queues it. If the queue is full the message is
// dropped; the next publish carries the full state anyway.
func (t *WSTransport) Send(m protocol.Message) error {
	select {
	case <-t.done:
		return ErrNotConnected
	default:
	}
	data, err := t.codec.Encode(m)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	select {
	case t.send <- data:
	default:
		t.log.Debug().Msg("send buffer full, dropping message")
	}
	return nil
}

// Close shuts the connection down. It is safe to call more than once.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = t.conn.Close()
	})
	return err
}

func (t *WSTransport) readPump() {
	defer close(t.events)

	t.conn.SetReadLimit(maxMessageSize)
	t.conn.SetReadDeadline(time.Now().Add(pongWait))
	t.conn.SetPongHandler(func(string) error {
		t.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			var reason error
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				reason = err
			}
			t.deliver(Event{Kind: EventDisconnected, Err: reason})
			t.Close()
			return
		}
		msg, err := protocol.DecodeFrame(msgType == websocket.BinaryMessage, data)
		if err != nil {
			t.log.Warn().Err(err).Msg("undecodable frame")
			continue
		}
		if !t.deliver(Event{Kind: EventMessage, Msg: msg}) {
			return
		}
	}
}

func (t *WSTransport) deliver(ev Event) bool {
	select {
	case t.events <- ev:
		return true
	case <-t.done:
		return false
	}
}

func (t *WSTransport) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	frameType := websocket.TextMessage
	if t.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data := <-t.send:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(frameType, data); err != nil {
				t.log.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-t.done:
			return
		}
	}
}
