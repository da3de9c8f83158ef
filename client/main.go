package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"car-arena/config"
	"car-arena/input"
	"car-arena/logging"
	"car-arena/protocol"
	"car-arena/replication"
	"car-arena/session"
	"car-arena/term"
)

const defaultLogFile = "car-arena-client.log"

func main() {
	fs := pflag.NewFlagSet("car-arena", pflag.ExitOnError)
	config.ClientFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// The screen belongs to tcell, so logs always go to a file.
	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if logCfg.File == "" {
		logCfg.File = defaultLogFile
	}
	log, closer, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("client stopped")
		fmt.Fprintf(os.Stderr, "car-arena: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := protocol.CodecFor(cfg.Net.Codec)
	if err != nil {
		return err
	}
	bindings, err := input.ParseBindings(cfg.Input.Bindings)
	if err != nil {
		return fmt.Errorf("key bindings: %w", err)
	}

	var ticket string
	if cfg.Net.Password != "" {
		ticket, err = fetchTicket(ctx, http.DefaultClient, cfg.Net.URL, cfg.Net.Room, cfg.Net.Password)
		if err != nil {
			return err
		}
	}
	target, err := dialURL(cfg.Net.URL, cfg.Net.Room, codec.Name(), ticket)
	if err != nil {
		return err
	}
	transport, err := replication.Dial(ctx, target, codec, log)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		transport.Close()
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		transport.Close()
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	var cues *term.Cues
	if cfg.Sound.Enabled {
		spk, err := term.OpenSpeaker()
		if err != nil {
			// Non-fatal, play without sound
			log.Warn().Err(err).Msg("audio unavailable")
		} else {
			defer spk.Close()
			cues = term.NewCues(spk)
		}
	}

	renderer := term.NewRenderer(screen, cues)
	sess := session.New(session.Options{
		Width:         cfg.World.Width,
		Height:        cfg.World.Height,
		SampleHz:      cfg.Loop.SampleHz,
		RenderHz:      cfg.Loop.RenderHz,
		GamepadPollHz: cfg.Input.GamepadPollHz,
		Name:          cfg.Player.Name,
		Bindings:      bindings,
		Renderer:      renderer,
		Logger:        log,
	})
	sess.Attach(transport)
	defer sess.Close()

	room := cfg.Net.Room
	renderer.Status = func() string {
		state := "offline"
		if sess.Replication().Connected() {
			state = "online"
		}
		name := sess.World().Local().Name
		if name == "" {
			name = "spectating"
		}
		return fmt.Sprintf(" %s  room %s  %s  peers %d ", state, room, name, sess.World().Peers().Len())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	capture := term.NewCapture(screen, sess, time.Duration(cfg.Input.KeyHoldMs)*time.Millisecond, log)
	capture.OnQuit = cancel
	capture.OnDisconnect = func() { sess.Disconnect() }
	go capture.Run(ctx)

	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
