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

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"car-arena/config"
	"car-arena/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fs := pflag.NewFlagSet("car-arena-relay", pflag.ExitOnError)
	config.RelayFlags(fs)
	hashPassword := fs.String("hash-password", "", "print the bcrypt hash of a room password and exit")
	_ = fs.Parse(os.Args[1:])

	if *hashPassword != "" {
		hash, err := HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log, closer, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("relay stopped")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	db, err := OpenDB(cfg.Relay.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	auth, err := NewAuth(db, cfg.Relay.Rooms, log)
	if err != nil {
		return err
	}
	analytics := NewAnalytics(db, log)
	defer analytics.Stop()
	tel, err := newTelemetry(os.Stdout, cfg.Relay.MetricsInterval)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(tel.provider)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("metrics shutdown")
		}
	}()
	metrics, err := newRelayMetrics(tel)
	if err != nil {
		return err
	}

	hub := NewHub(HubConfig{
		MaxConnsPerIP: cfg.Relay.MaxConnsPerIP,
		MaxTotalConns: cfg.Relay.MaxTotalConns,
		MaxRooms:      cfg.Relay.MaxRooms,
	}, auth, analytics, metrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	server := &http.Server{
		Addr:              cfg.Relay.Addr,
		Handler:           SetupRoutes(hub, cfg.Relay.PublicURL),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Relay.Addr).
			Int("protectedRooms", len(cfg.Relay.Rooms)).
			Msg("relay listening")
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	// Hijacked websocket connections outlive Shutdown; the hub closes them.
	stopHub()
	return err
}
