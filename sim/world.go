package sim

import (
	"math/rand/v2"
	"time"
)

// World owns every entity simulated by this process: the local vehicle,
// replicas of peer vehicles and all live projectiles.
type World struct {
	Width, Height float64

	local       *Vehicle
	peers       *PeerRegistry
	projectiles []*Projectile
	rng         *rand.Rand

	grid     *SpatialGrid
	queryBuf []int
	vehicles []*Vehicle
}

// StepResult reports what one fixed step changed on the local vehicle
type StepResult struct {
	Respawned  bool
	Wrapped    bool
	Collisions Collisions
}

// Changed reports whether the step produced a publishable change
func (r StepResult) Changed() bool {
	return r.Respawned || r.Wrapped || r.Collisions.Any()
}

// NewWorld creates a world with the local vehicle at its centre.
// rng drives respawn positions; nil seeds one from the runtime.
func NewWorld(width, height float64, rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &World{
		Width:  width,
		Height: height,
		local:  NewLocalVehicle(width/2, height/2),
		peers:  NewPeerRegistry(),
		rng:    rng,
		grid:   NewSpatialGrid(width, height),
	}
}

// Local returns the vehicle driven by this process
func (w *World) Local() *Vehicle {
	return w.local
}

// Peers returns the registry of remote vehicles
func (w *World) Peers() *PeerRegistry {
	return w.peers
}

// Vehicles returns the local vehicle followed by remote ones in join order.
// The returned slice is reused between calls.
func (w *World) Vehicles() []*Vehicle {
	w.vehicles = append(w.vehicles[:0], w.local)
	w.vehicles = append(w.vehicles, w.peers.Vehicles()...)
	return w.vehicles
}

// Projectiles returns the live projectiles
func (w *World) Projectiles() []*Projectile {
	return w.projectiles
}

// AddProjectile inserts a projectile into the world
func (w *World) AddProjectile(p *Projectile) {
	w.projectiles = append(w.projectiles, p)
}

// RandomPoint returns a uniformly random position inside the world
func (w *World) RandomPoint() (float64, float64) {
	return w.rng.Float64() * w.Width, w.rng.Float64() * w.Height
}

// Step advances the world by one fixed step at wall-clock time now.
//
// Order: reset a hit or shot local vehicle, integrate and wrap it, let every
// shooting vehicle fire, move projectiles, drop expired ones, then run
// collision detection. Remote vehicles are never integrated.
func (w *World) Step(now time.Time) StepResult {
	var res StepResult
	local := w.local

	if local.Hit || local.Shot {
		x, y := w.RandomPoint()
		local.Respawn(x, y)
		res.Respawned = true
	}

	Integrate(local)
	res.Wrapped = Wrap(local, w.Width, w.Height)

	for _, v := range w.Vehicles() {
		if p, ok := Shoot(v, now); ok {
			w.projectiles = append(w.projectiles, p)
		}
	}
	for _, p := range w.projectiles {
		MoveProjectile(p)
	}
	w.ExpireProjectiles(now)

	res.Collisions = w.DetectCollisions()
	return res
}

// ExpireProjectiles removes projectiles older than ProjectileTTL and returns
// how many were dropped.
func (w *World) ExpireProjectiles(now time.Time) int {
	n := 0
	for i, p := range w.projectiles {
		if p.Expired(now) {
			w.projectiles[i] = nil
			n++
		}
	}
	if n > 0 {
		w.compactProjectiles()
	}
	return n
}

func (w *World) compactProjectiles() {
	kept := w.projectiles[:0]
	for _, p := range w.projectiles {
		if p != nil {
			kept = append(kept, p)
		}
	}
	clear(w.projectiles[len(kept):])
	w.projectiles = kept
}

// FreezeRemote zeroes the replicated intents of every peer vehicle. Poses
// are kept, so frozen replicas stay visible but no longer fire.
func (w *World) FreezeRemote() {
	for _, v := range w.peers.Vehicles() {
		v.Throttling, v.Reversing = 0, 0
		v.TurningLeft, v.TurningRight = 0, 0
		v.Shooting = 0
	}
}

// ClearRemote drops every peer vehicle and every projectile they fired
func (w *World) ClearRemote() {
	w.peers.Clear()
	for i, p := range w.projectiles {
		if !p.OwnedLocally {
			w.projectiles[i] = nil
		}
	}
	w.compactProjectiles()
}
