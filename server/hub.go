package main

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"car-arena/protocol"
)

const hubQueueSize = 256

// HubConfig limits what the hub accepts
type HubConfig struct {
	MaxConnsPerIP int
	MaxTotalConns int
	MaxRooms      int
}

type hubCmdKind int

const (
	cmdRegister hubCmdKind = iota
	cmdUnregister
	cmdRelay
)

// hubCmd is one unit of work for the hub. Membership changes and relayed
// messages share a queue so each client's commands are applied in the
// order it issued them.
type hubCmd struct {
	kind   hubCmdKind
	client *Client
	msg    protocol.Message
}

// Hub owns every room. All room and membership changes happen on the Run
// goroutine; connection pumps talk to it through one ordered queue.
type Hub struct {
	cfg       HubConfig
	log       zerolog.Logger
	auth      *Auth
	analytics *Analytics
	metrics   *relayMetrics

	cmds    chan hubCmd
	listReq chan chan []protocol.RoomInfo
	done    chan struct{}

	// owned by Run
	clients map[*Client]bool
	rooms   map[string]*Room

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a Hub. Call Run before accepting connections.
func NewHub(cfg HubConfig, auth *Auth, analytics *Analytics, metrics *relayMetrics, log zerolog.Logger) *Hub {
	return &Hub{
		cfg:       cfg,
		log:       log.With().Str("component", "hub").Logger(),
		auth:      auth,
		analytics: analytics,
		metrics:   metrics,
		cmds:      make(chan hubCmd, hubQueueSize),
		listReq:   make(chan chan []protocol.RoomInfo),
		done:      make(chan struct{}),
		clients:   make(map[*Client]bool),
		rooms:     make(map[string]*Room),
		ipConns:   make(map[string]int),
	}
}

// CanAccept reports whether another connection from ip fits the limits
func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.cfg.MaxTotalConns > 0 && h.totalConns >= h.cfg.MaxTotalConns {
		return false
	}
	if h.cfg.MaxConnsPerIP > 0 && h.ipConns[ip] >= h.cfg.MaxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

// Run processes membership and relay traffic until ctx is done. On exit
// every connection is told to close.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
		}
		h.discardQueued()
		h.log.Info().Msg("hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case cmd := <-h.cmds:
			h.apply(cmd)

		case reply := <-h.listReq:
			reply <- h.roomInfo()
		}
	}
}

func (h *Hub) apply(cmd hubCmd) {
	switch cmd.kind {
	case cmdRegister:
		h.join(cmd.client)
	case cmdUnregister:
		h.leave(cmd.client)
	case cmdRelay:
		c := cmd.client
		if !h.clients[c] {
			return
		}
		if room, ok := h.rooms[c.room]; ok {
			room.relay(c, cmd.msg)
		}
	}
}

// discardQueued releases clients whose registration was still queued when
// the hub stopped. Submitters see done closed and stop sending.
func (h *Hub) discardQueued() {
	for {
		select {
		case cmd := <-h.cmds:
			if cmd.kind == cmdRegister && !h.clients[cmd.client] {
				close(cmd.client.send)
			}
		default:
			return
		}
	}
}

func (h *Hub) join(c *Client) {
	room, ok := h.rooms[c.room]
	if !ok {
		if h.cfg.MaxRooms > 0 && len(h.rooms) >= h.cfg.MaxRooms {
			h.log.Warn().Str("room", c.room).Int("rooms", len(h.rooms)).Msg("room limit reached")
			h.analytics.Track(EvtRoomFull, c.room, c.id, "")
			close(c.send)
			return
		}
		room = newRoom(c.room, h)
		h.rooms[c.room] = room
		h.analytics.Track(EvtRoomOpen, c.room, "", "")
	}

	h.clients[c] = true
	room.add(c)
	h.metrics.peerJoined(c.room)
	h.analytics.Track(EvtPeerJoin, c.room, c.id, c.codec.Name())
	h.log.Info().Str("room", c.room).Str("peer", c.id).Int("peers", room.Len()).Msg("peer joined")
}

func (h *Hub) leave(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)

	room, ok := h.rooms[c.room]
	if !ok || !room.remove(c) {
		return
	}
	h.metrics.peerLeft(c.room)
	h.analytics.Track(EvtPeerLeave, c.room, c.id, "")
	h.log.Info().Str("room", c.room).Str("peer", c.id).Int("peers", room.Len()).Msg("peer left")

	if room.Len() == 0 {
		delete(h.rooms, c.room)
		h.analytics.Track(EvtRoomClose, c.room, "", "")
	}
}

func (h *Hub) roomInfo() []protocol.RoomInfo {
	list := make([]protocol.RoomInfo, 0, len(h.rooms))
	for name, room := range h.rooms {
		list = append(list, protocol.RoomInfo{
			Name:      name,
			Peers:     room.Len(),
			Protected: h.auth.Protected(name),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Rooms lists the open rooms. It returns nil once the hub has stopped.
func (h *Hub) Rooms(ctx context.Context) []protocol.RoomInfo {
	reply := make(chan []protocol.RoomInfo, 1)
	select {
	case h.listReq <- reply:
	case <-h.done:
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case list := <-reply:
		return list
	case <-ctx.Done():
		return nil
	}
}

// submit queues cmd unless the hub has stopped
func (h *Hub) submit(cmd hubCmd) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.cmds <- cmd:
		return true
	case <-h.done:
		return false
	}
}
