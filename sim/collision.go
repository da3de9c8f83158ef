package sim

import "slices"

// CirclesHit reports whether two circles overlap. Touching circles do not.
func CirclesHit(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	radSum := r1 + r2
	return dx*dx+dy*dy < radSum*radSum
}

// Collisions summarises one detection pass
type Collisions struct {
	LocalHit  bool     // local vehicle rammed another
	LocalShot bool     // local vehicle struck by a projectile
	Scored    int      // remote vehicles newly shot by local projectiles
	Shot      []string // peer ids newly marked shot
}

// Any reports whether the pass changed any vehicle's state
func (c Collisions) Any() bool {
	return c.LocalHit || c.LocalShot || len(c.Shot) > 0
}

// DetectCollisions runs the vehicle-vehicle and vehicle-projectile tests
// against the current world and applies their effects. A projectile that
// marks a vehicle shot is consumed.
func (w *World) DetectCollisions() Collisions {
	var res Collisions
	local := w.local

	for _, v := range w.peers.Vehicles() {
		if v.Shot {
			continue
		}
		if CirclesHit(v.X, v.Y, VehicleRadius, local.X, local.Y, VehicleRadius) {
			local.Hit = true
			res.LocalHit = true
		}
	}

	if len(w.projectiles) == 0 {
		return res
	}

	vehicles := w.Vehicles()
	w.grid.Clear()
	for i, v := range vehicles {
		w.grid.Insert(v.X, v.Y, i)
	}

	consumed := false
	for pi, p := range w.projectiles {
		w.queryBuf = w.grid.QueryBuf(p.X, p.Y, VehicleRadius+ProjectileRadius, w.queryBuf[:0])
		// lowest index first so the local vehicle wins ties
		slices.Sort(w.queryBuf)
		for _, vi := range w.queryBuf {
			v := vehicles[vi]
			if v.Shot {
				continue
			}
			if !CirclesHit(v.X, v.Y, VehicleRadius, p.X, p.Y, ProjectileRadius) {
				continue
			}
			v.Shot = true
			if v.Local {
				res.LocalShot = true
			} else {
				res.Shot = append(res.Shot, v.ID)
				if p.OwnedLocally {
					local.Score++
					res.Scored++
				}
			}
			w.projectiles[pi] = nil
			consumed = true
			break
		}
	}
	if consumed {
		w.compactProjectiles()
	}
	return res
}
