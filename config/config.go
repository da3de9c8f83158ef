// Package config loads settings for the client and relay binaries from
// defaults, an optional config file, CARARENA_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CARARENA"

// LogConfig selects log verbosity, format and destination
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`
}

// WorldConfig sizes the playing field
type WorldConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// LoopConfig sets the sampling and render cadences
type LoopConfig struct {
	SampleHz int `mapstructure:"sampleHz"`
	RenderHz int `mapstructure:"renderHz"`
}

// InputConfig holds key bindings and gamepad polling
type InputConfig struct {
	GamepadPollHz int                 `mapstructure:"gamepadPollHz"`
	Bindings      map[string][]string `mapstructure:"bindings"`
	// KeyHoldMs is how long a terminal key press counts as held without a
	// repeat, since terminals report no key releases.
	KeyHoldMs int `mapstructure:"keyHoldMs"`
}

// NetConfig points the client at a relay
type NetConfig struct {
	URL      string `mapstructure:"url"`
	Room     string `mapstructure:"room"`
	Password string `mapstructure:"password"`
	Codec    string `mapstructure:"codec"`
}

// PlayerConfig holds the local player's identity
type PlayerConfig struct {
	Name string `mapstructure:"name"`
}

// RelayConfig configures the relay server
type RelayConfig struct {
	Addr          string `mapstructure:"addr"`
	DBPath        string `mapstructure:"dbPath"`
	PublicURL     string `mapstructure:"publicURL"`
	MaxConnsPerIP int    `mapstructure:"maxConnsPerIP"`
	MaxTotalConns int    `mapstructure:"maxTotalConns"`
	MaxRooms      int    `mapstructure:"maxRooms"`
	// MetricsInterval enables a periodic dump of relay metrics to stdout.
	// Zero keeps metrics in-process, visible through /stats only.
	MetricsInterval time.Duration `mapstructure:"metricsInterval"`
	// Rooms maps a protected room name to its bcrypt password hash.
	// Names are case-insensitive.
	Rooms map[string]string `mapstructure:"rooms"`
}

// SoundConfig toggles audio cues
type SoundConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the full configuration for both binaries
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	World  WorldConfig  `mapstructure:"world"`
	Loop   LoopConfig   `mapstructure:"loop"`
	Input  InputConfig  `mapstructure:"input"`
	Net    NetConfig    `mapstructure:"net"`
	Player PlayerConfig `mapstructure:"player"`
	Relay  RelayConfig  `mapstructure:"relay"`
	Sound  SoundConfig  `mapstructure:"sound"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("world.width", 1500.0)
	v.SetDefault("world.height", 1500.0)

	v.SetDefault("loop.sampleHz", 120)
	v.SetDefault("loop.renderHz", 30)

	v.SetDefault("input.gamepadPollHz", 60)
	v.SetDefault("input.keyHoldMs", 400)
	v.SetDefault("input.bindings", map[string][]string{
		"up":    {"ArrowUp", "w"},
		"down":  {"ArrowDown", "s"},
		"left":  {"ArrowLeft", "a"},
		"right": {"ArrowRight", "d"},
		"shoot": {"Space"},
	})

	v.SetDefault("net.url", "ws://localhost:8080/ws")
	v.SetDefault("net.room", "lobby")
	v.SetDefault("net.password", "")
	v.SetDefault("net.codec", "json")

	v.SetDefault("player.name", "")

	v.SetDefault("relay.addr", ":8080")
	v.SetDefault("relay.dbPath", "car-arena.db")
	v.SetDefault("relay.publicURL", "http://localhost:8080")
	v.SetDefault("relay.maxConnsPerIP", 5)
	v.SetDefault("relay.maxTotalConns", 1000)
	v.SetDefault("relay.maxRooms", 100)
	v.SetDefault("relay.rooms", map[string]string{})
	v.SetDefault("relay.metricsInterval", time.Duration(0))

	v.SetDefault("sound.enabled", true)
}

// flagKeys maps flag names to configuration keys
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"log-format":       "log.format",
	"log-file":         "log.file",
	"name":             "player.name",
	"url":              "net.url",
	"room":             "net.room",
	"password":         "net.password",
	"codec":            "net.codec",
	"sound":            "sound.enabled",
	"addr":             "relay.addr",
	"db":               "relay.dbPath",
	"public-url":       "relay.publicURL",
	"metrics-interval": "relay.metricsInterval",
}

func commonFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to a config file (toml, yaml or json)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
	fs.String("log-file", "", "write logs to this file instead of stderr")
}

// ClientFlags registers the flags understood by the terminal client
func ClientFlags(fs *pflag.FlagSet) {
	commonFlags(fs)
	fs.StringP("name", "n", "", "player name; without one you spectate")
	fs.String("url", "ws://localhost:8080/ws", "relay websocket URL")
	fs.StringP("room", "r", "lobby", "room to join")
	fs.String("password", "", "room password, if the room is protected")
	fs.String("codec", "json", "wire codec: json or msgpack")
	fs.Bool("sound", true, "play sound cues")
}

// RelayFlags registers the flags understood by the relay
func RelayFlags(fs *pflag.FlagSet) {
	commonFlags(fs)
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("db", "car-arena.db", "SQLite database path")
	fs.String("public-url", "http://localhost:8080", "externally reachable base URL for QR codes")
	fs.Duration("metrics-interval", 0, "print relay metrics to stdout at this interval (0 disables)")
}

// Load builds a Config. fs may be nil; only flags present in it and set by
// the user override file and environment values.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var path string
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			path = f.Value.String()
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the binaries cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %gx%g", c.World.Width, c.World.Height))
	}
	if c.Loop.SampleHz <= 0 || c.Loop.RenderHz <= 0 || c.Input.GamepadPollHz <= 0 {
		errs = append(errs, errors.New("loop and polling rates must be positive"))
	}
	if c.Relay.MetricsInterval < 0 {
		errs = append(errs, fmt.Errorf("metrics interval must not be negative, got %s", c.Relay.MetricsInterval))
	}
	switch c.Net.Codec {
	case "json", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Net.Codec))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
