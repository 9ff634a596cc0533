package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/s47195385/nbtex/internal/config"
)

// configEnvVar names an environment variable pointing at a config file,
// checked when --config is not given.
const configEnvVar = "NBTEX_CONFIG"

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// DefaultEnv returns production dependencies. A .env file in the working
// directory is loaded when present; a missing file is not an error.
func DefaultEnv() *Environment {
	_ = godotenv.Load()

	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

// loadConfig resolves the effective config: the --config flag, then the
// NBTEX_CONFIG environment variable, then defaults.
func loadConfig(flags *cliFlags) (*config.Config, error) {
	path := flags.config
	if path == "" {
		path = os.Getenv(configEnvVar)
	}
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}
