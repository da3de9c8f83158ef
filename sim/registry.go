package sim

import "errors"

// departedMemory bounds how many departed identities are remembered for
// idempotent removal. Older departures fall back to ErrUnknownPeer.
const departedMemory = 256

var (
	// ErrUnknownPeer is returned when removing an identity never seen
	ErrUnknownPeer = errors.New("unknown peer")
	// ErrLocalIdentity is returned when a remote update names the local vehicle
	ErrLocalIdentity = errors.New("identity belongs to the local vehicle")
)

// PeerRegistry maps peer identities to their replicated vehicles, in the
// order they were first seen.
type PeerRegistry struct {
	self      string
	byID      map[string]*Vehicle
	order     []*Vehicle
	announced map[string]struct{}

	// departed maps an identity to the sequence number of its departure;
	// departOrder lists departures oldest first and may hold stale entries
	departed    map[string]uint64
	departOrder []departure
	departSeq   uint64
}

type departure struct {
	id  string
	seq uint64
}

// NewPeerRegistry creates an empty registry
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{
		byID:      make(map[string]*Vehicle),
		announced: make(map[string]struct{}),
		departed:  make(map[string]uint64),
	}
}

// SetSelf records the identity the channel assigned to this process.
// A stale entry under that identity is dropped.
func (r *PeerRegistry) SetSelf(id string) {
	r.self = id
	if _, ok := r.byID[id]; ok {
		r.drop(id)
	}
	delete(r.announced, id)
}

// Self returns the local identity, empty until assigned
func (r *PeerRegistry) Self() string {
	return r.self
}

// Announce notes that a peer joined before any of its state arrived
func (r *PeerRegistry) Announce(id string) {
	if id == "" || id == r.self {
		return
	}
	r.announced[id] = struct{}{}
	delete(r.departed, id)
}

// Get returns the vehicle for id
func (r *PeerRegistry) Get(id string) (*Vehicle, bool) {
	v, ok := r.byID[id]
	return v, ok
}

// GetOrCreate returns the vehicle for id, creating it on first sight.
func (r *PeerRegistry) GetOrCreate(id string) (*Vehicle, bool, error) {
	if id != "" && id == r.self {
		return nil, false, ErrLocalIdentity
	}
	if v, ok := r.byID[id]; ok {
		return v, false, nil
	}
	v := NewRemoteVehicle(id)
	r.byID[id] = v
	r.order = append(r.order, v)
	delete(r.announced, id)
	delete(r.departed, id)
	return v, true, nil
}

// Remove deletes the vehicle for id. Removing an announced peer that never
// sent state, or one already removed, is not an error; an identity this
// registry has never heard of returns ErrUnknownPeer.
func (r *PeerRegistry) Remove(id string) error {
	if _, ok := r.byID[id]; ok {
		r.drop(id)
		r.markDeparted(id)
		return nil
	}
	if _, ok := r.announced[id]; ok {
		delete(r.announced, id)
		r.markDeparted(id)
		return nil
	}
	if _, ok := r.departed[id]; ok {
		return nil
	}
	return ErrUnknownPeer
}

func (r *PeerRegistry) markDeparted(id string) {
	r.departSeq++
	r.departed[id] = r.departSeq
	r.departOrder = append(r.departOrder, departure{id: id, seq: r.departSeq})
	for len(r.departOrder) > departedMemory {
		oldest := r.departOrder[0]
		r.departOrder = r.departOrder[1:]
		if r.departed[oldest.id] == oldest.seq {
			delete(r.departed, oldest.id)
		}
	}
}

func (r *PeerRegistry) drop(id string) {
	v := r.byID[id]
	delete(r.byID, id)
	for i, o := range r.order {
		if o == v {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Vehicles returns the registered vehicles in join order.
// The slice is owned by the registry and must not be modified.
func (r *PeerRegistry) Vehicles() []*Vehicle {
	return r.order
}

// Len returns the number of registered vehicles
func (r *PeerRegistry) Len() int {
	return len(r.order)
}

// Clear forgets every peer, including announcements and departures
func (r *PeerRegistry) Clear() {
	clear(r.byID)
	clear(r.announced)
	clear(r.departed)
	r.departOrder = nil
	r.order = r.order[:0]
}
