// Package config resolves runtime settings from flags, the environment, and
// an optional .env file, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string

	// EmuHost and EmuPort locate the emulator's network command listener.
	EmuHost string
	EmuPort int

	// InputVariant selects the input command dialect: "bitmask" or "named".
	InputVariant string

	// HoldDuration is how long a dispatched button stays pressed.
	HoldDuration time.Duration

	WindowDuration time.Duration
	Cooldown       time.Duration
	PollInterval   time.Duration

	// DBPath is the SQLite file for execution history. Empty disables it.
	DBPath string
}

// ParseFlags parses args and fills gaps from the environment. A .env file in
// the working directory is loaded first when present.
func ParseFlags(args []string) (Config, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	var cfg Config
	fs := flag.NewFlagSet("crowdplayd", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "listen", "", "HTTP listen address")
	fs.StringVar(&cfg.EmuHost, "emu-host", "", "Emulator host")
	fs.IntVar(&cfg.EmuPort, "emu-port", 0, "Emulator UDP port")
	fs.StringVar(&cfg.InputVariant, "input-variant", "", "Input dialect: bitmask or named")
	fs.DurationVar(&cfg.HoldDuration, "hold", 0, "Button hold duration")
	fs.DurationVar(&cfg.WindowDuration, "window", 0, "Voting window duration")
	fs.DurationVar(&cfg.Cooldown, "cooldown", 0, "Cooldown after each window")
	fs.DurationVar(&cfg.PollInterval, "poll", 0, "Game state poll interval")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite path for execution history (empty disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables, then defaults.
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = envOr("LISTEN_ADDR", ":8080")
	}
	if cfg.EmuHost == "" {
		cfg.EmuHost = envOr("EMU_HOST", "127.0.0.1")
	}
	if cfg.EmuPort == 0 {
		port, err := envInt("EMU_PORT", 55355)
		if err != nil {
			return Config{}, err
		}
		cfg.EmuPort = port
	}
	if cfg.InputVariant == "" {
		cfg.InputVariant = envOr("INPUT_VARIANT", "bitmask")
	}
	if cfg.InputVariant != "bitmask" && cfg.InputVariant != "named" {
		return Config{}, fmt.Errorf("invalid input variant %q (want bitmask or named)", cfg.InputVariant)
	}

	var err error
	if cfg.HoldDuration, err = envDuration("HOLD_DURATION", cfg.HoldDuration, 133*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.WindowDuration, err = envDuration("WINDOW_DURATION", cfg.WindowDuration, 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Cooldown, err = envDuration("COOLDOWN", cfg.Cooldown, 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", cfg.PollInterval, 5*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.WindowDuration <= 0 {
		return Config{}, errors.New("window duration must be positive")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("DB_PATH")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, current, fallback time.Duration) (time.Duration, error) {
	if current != 0 {
		return current, nil
	}
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
