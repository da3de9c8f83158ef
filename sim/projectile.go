package sim

import "time"

// Projectile is a shot fired by a vehicle
type Projectile struct {
	X, Y         float64
	VX, VY       float64
	Angle        float64
	SpawnedAt    time.Time
	OwnedLocally bool
}

// Expired reports whether the projectile has outlived ProjectileTTL at now
func (p *Projectile) Expired(now time.Time) bool {
	return now.Sub(p.SpawnedAt) > ProjectileTTL
}
