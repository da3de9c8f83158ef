package term

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"car-arena/sim"
)

const sampleRate = beep.SampleRate(44100)

// Tone plays a short beep
type Tone interface {
	Play(freq float64, d time.Duration)
}

// Speaker plays tones through the system audio device
type Speaker struct{}

// OpenSpeaker initializes audio output. Callers treat failure as "no sound".
func OpenSpeaker() (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Speaker{}, nil
}

// Play queues a sine tone
func (s *Speaker) Play(freq float64, d time.Duration) {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

// Close stops audio output
func (s *Speaker) Close() {
	speaker.Close()
}

// Cues watches successive snapshots and beeps when the local player scores
// or is destroyed
type Cues struct {
	tone     Tone
	primed   bool
	score    int
	respawns int
}

// NewCues plays through tone
func NewCues(tone Tone) *Cues {
	return &Cues{tone: tone}
}

// Observe compares snap with the previous one
func (c *Cues) Observe(snap sim.Snapshot) {
	local, ok := snap.Local()
	if !ok {
		return
	}
	if !c.primed {
		c.primed = true
		c.score, c.respawns = local.Score, local.Respawns
		return
	}
	if local.Score > c.score {
		c.tone.Play(880, 80*time.Millisecond)
	}
	if local.Respawns > c.respawns {
		c.tone.Play(220, 200*time.Millisecond)
	}
	c.score, c.respawns = local.Score, local.Respawns
}
