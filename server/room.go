package main

import (
	"car-arena/protocol"
)

// Room is a set of peers that see each other's vehicles. It is owned by
// the hub goroutine and never touched elsewhere.
type Room struct {
	Name  string
	hub   *Hub
	peers map[string]*Client
	order []string
}

func newRoom(name string, hub *Hub) *Room {
	return &Room{Name: name, hub: hub, peers: make(map[string]*Client)}
}

// Len returns the number of attached peers
func (r *Room) Len() int {
	return len(r.order)
}

// add attaches c: the newcomer learns its identity and everyone else
// learns that someone joined
func (r *Room) add(c *Client) {
	r.deliver(c, protocol.Welcome(c.id))
	r.broadcast(protocol.Join(c.id), c)
	r.peers[c.id] = c
	r.order = append(r.order, c.id)
}

// remove detaches c and tells the rest of the room
func (r *Room) remove(c *Client) bool {
	if _, ok := r.peers[c.id]; !ok {
		return false
	}
	delete(r.peers, c.id)
	for i, id := range r.order {
		if id == c.id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.broadcast(protocol.Leave(c.id), nil)
	return true
}

// relay forwards a params message from one peer to the others, stamped
// with the sender's identity
func (r *Room) relay(from *Client, msg protocol.Message) {
	msg.ID = from.id
	r.broadcast(msg, from)
}

// broadcast sends msg to every peer except skip, encoding it at most once
// per codec
func (r *Room) broadcast(msg protocol.Message, skip *Client) {
	frames := make(map[string][]byte, 2)
	for _, id := range r.order {
		c := r.peers[id]
		if c == skip {
			continue
		}
		data, ok := frames[c.codec.Name()]
		if !ok {
			var err error
			data, err = c.codec.Encode(msg)
			if err != nil {
				r.hub.log.Error().Err(err).Str("type", msg.T).Msg("encode relay message")
				return
			}
			frames[c.codec.Name()] = data
		}
		r.hub.metrics.delivered(msg.T, c.Send(data))
	}
}

func (r *Room) deliver(c *Client, msg protocol.Message) {
	data, err := c.codec.Encode(msg)
	if err != nil {
		r.hub.log.Error().Err(err).Str("type", msg.T).Msg("encode message")
		return
	}
	r.hub.metrics.delivered(msg.T, c.Send(data))
}
