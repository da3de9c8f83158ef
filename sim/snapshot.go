package sim

import (
	"math"
	"sort"
)

// VehiclePose is the read-only view of a vehicle handed to renderers
type VehiclePose struct {
	ID       string
	Name     string
	Local    bool
	X, Y     float64
	Angle    float64
	Shot     bool
	Score    int
	Respawns int
	Skidding bool
	// Bearing is the direction from the local vehicle, in radians from +x
	// towards +y. Zero for the local vehicle.
	Bearing float64
}

// ProjectilePose is the read-only view of a projectile
type ProjectilePose struct {
	X, Y  float64
	Angle float64
	Local bool
}

// Snapshot is a copy of the world taken at render time
type Snapshot struct {
	Width, Height float64
	Vehicles      []VehiclePose
	Projectiles   []ProjectilePose
}

// ScoreEntry is one scoreboard row
type ScoreEntry struct {
	Name  string
	Score int
	Local bool
}

// Snapshot copies the renderable state of the world
func (w *World) Snapshot() Snapshot {
	local := w.local
	vehicles := w.Vehicles()
	snap := Snapshot{
		Width:       w.Width,
		Height:      w.Height,
		Vehicles:    make([]VehiclePose, 0, len(vehicles)),
		Projectiles: make([]ProjectilePose, 0, len(w.projectiles)),
	}
	for _, v := range vehicles {
		pose := VehiclePose{
			ID:       v.ID,
			Name:     v.Name,
			Local:    v.Local,
			X:        v.X,
			Y:        v.Y,
			Angle:    v.Angle,
			Shot:     v.Shot,
			Score:    v.Score,
			Respawns: v.Respawns,
			Skidding: v.Skidding(),
		}
		if !v.Local {
			pose.Bearing = math.Atan2(v.Y-local.Y, v.X-local.X)
		}
		snap.Vehicles = append(snap.Vehicles, pose)
	}
	for _, p := range w.projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectilePose{
			X: p.X, Y: p.Y, Angle: p.Angle, Local: p.OwnedLocally,
		})
	}
	return snap
}

// Local returns the pose of the local vehicle
func (s Snapshot) Local() (VehiclePose, bool) {
	for _, v := range s.Vehicles {
		if v.Local {
			return v, true
		}
	}
	return VehiclePose{}, false
}

// Scoreboard lists vehicles by score, highest first, then by name
func (s Snapshot) Scoreboard() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(s.Vehicles))
	for _, v := range s.Vehicles {
		name := v.Name
		if name == "" {
			name = "anonymous"
		}
		entries = append(entries, ScoreEntry{Name: name, Score: v.Score, Local: v.Local})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
