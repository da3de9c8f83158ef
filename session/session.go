// Package session runs one player's simulation: it owns the world and every
// component that touches it, and serializes all of their work onto a single
// goroutine.
package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"car-arena/input"
	"car-arena/replication"
	"car-arena/sim"
)

const commandBufSize = 256

// Renderer draws a snapshot of the world
type Renderer interface {
	Render(snap sim.Snapshot)
}

// Options configures a Session
type Options struct {
	Width, Height float64
	SampleHz      int
	RenderHz      int
	GamepadPollHz int

	Name     string
	Bindings input.Bindings
	Gamepads input.GamepadSource
	Renderer Renderer

	Logger zerolog.Logger
	Now    func() time.Time
	Rand   *rand.Rand
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = sim.DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = sim.DefaultHeight
	}
	if o.SampleHz <= 0 {
		o.SampleHz = 120
	}
	if o.RenderHz <= 0 {
		o.RenderHz = 30
	}
	if o.GamepadPollHz <= 0 {
		o.GamepadPollHz = 60
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Session owns a World and the loop, input and replication around it.
// Everything that mutates the world runs inside Run's goroutine; other
// goroutines hand work over with Do.
type Session struct {
	opts  Options
	log   zerolog.Logger
	world *sim.World
	input *input.Normalizer
	loop  *sim.Loop
	repl  *replication.Client

	events   <-chan replication.Event
	commands chan func()
	quit     chan struct{}
	done     chan struct{}
	running  atomic.Bool
	stopOnce sync.Once
}

// New builds a session. The local vehicle starts at the world centre.
func New(opts Options) *Session {
	opts.setDefaults()
	log := opts.Logger.With().Str("component", "session").Logger()

	world := sim.NewWorld(opts.Width, opts.Height, opts.Rand)
	world.Local().Name = opts.Name
	norm := input.NewNormalizer(opts.Bindings, opts.Gamepads)
	repl := replication.NewClient(world, opts.Logger)
	loop := sim.NewLoop(world, norm, repl, opts.Logger)

	return &Session{
		opts:     opts,
		log:      log,
		world:    world,
		input:    norm,
		loop:     loop,
		repl:     repl,
		commands: make(chan func(), commandBufSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Attach connects the session to a transport. Call before Run.
func (s *Session) Attach(t replication.Transport) {
	s.repl.Attach(t)
	s.events = t.Events()
}

// World returns the simulated world. Only touch it from inside Do.
func (s *Session) World() *sim.World { return s.world }

// Input returns the normalizer fed by raw device capture. Only touch it
// from inside Do.
func (s *Session) Input() *input.Normalizer { return s.input }

// Replication returns the replication client
func (s *Session) Replication() *replication.Client { return s.repl }

// Do queues fn to run on the session goroutine between turns. It returns
// false if the session has stopped.
func (s *Session) Do(fn func()) bool {
	select {
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.commands <- fn:
		return true
	case <-s.quit:
		return false
	}
}

// SetName names the local player and publishes it. Until a name is set the
// player is a spectator: controls are ignored.
func (s *Session) SetName(name string) bool {
	return s.Do(func() {
		s.world.Local().Name = name
		s.repl.PublishIfChanged(s.world.Local())
	})
}

// Disconnect drops the channel, forgets every peer and returns the local
// player to spectating. Repeated calls are harmless.
func (s *Session) Disconnect() bool {
	return s.Do(s.disconnect)
}

func (s *Session) disconnect() {
	s.repl.Disconnect()
	s.events = nil
	s.world.ClearRemote()
	s.world.Local().Name = ""
	s.input.Keyboard.Reset()
}

// Run drives the session until ctx is cancelled or Close is called
func (s *Session) Run(ctx context.Context) error {
	s.running.Store(true)
	defer close(s.done)
	defer s.repl.Disconnect()

	sample := time.NewTicker(time.Second / time.Duration(s.opts.SampleHz))
	defer sample.Stop()
	pads := time.NewTicker(time.Second / time.Duration(s.opts.GamepadPollHz))
	defer pads.Stop()
	render := time.NewTicker(time.Second / time.Duration(s.opts.RenderHz))
	defer render.Stop()

	s.log.Info().
		Int("sampleHz", s.opts.SampleHz).
		Int("renderHz", s.opts.RenderHz).
		Float64("width", s.opts.Width).
		Float64("height", s.opts.Height).
		Msg("session started")
	defer s.log.Info().Msg("session stopped")

	s.loop.Sample(s.opts.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.quit:
			return nil
		case <-sample.C:
			s.loop.Sample(s.opts.Now())
		case <-pads.C:
			s.input.PollGamepads()
		case <-render.C:
			if s.opts.Renderer != nil {
				s.opts.Renderer.Render(s.world.Snapshot())
			}
		case ev, ok := <-s.events:
			if !ok {
				s.events = nil
				continue
			}
			s.repl.Handle(ev)
		case fn := <-s.commands:
			fn()
		}
	}
}

// Close stops Run, waits for it to return and releases the transport. Safe
// to call repeatedly.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.running.Load() {
			<-s.done
			return
		}
		s.repl.Disconnect()
	})
}
