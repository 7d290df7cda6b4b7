package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvGravity     = "BOUNCESIM_GRAVITY"
	EnvRestitution = "BOUNCESIM_RESTITUTION"
	EnvSubsteps    = "BOUNCESIM_SUBSTEPS"
	EnvSeed        = "BOUNCESIM_SEED"
)

// LoadEnv reads a .env file into the process environment if one exists.
// Variables already set are left alone.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// ApplyEnv overrides file and preset values with BOUNCESIM_* variables.
func ApplyEnv(cfg *Config) error {
	if v, ok, err := getEnvFloat(EnvGravity); err != nil {
		return err
	} else if ok {
		cfg.Gravity = v
	}
	if v, ok, err := getEnvFloat(EnvRestitution); err != nil {
		return err
	} else if ok {
		cfg.Restitution = v
	}
	if v := os.Getenv(EnvSubsteps); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSubsteps, err)
		}
		cfg.Substeps = n
	}
	if v := os.Getenv(EnvSeed); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = n
	}
	return nil
}

func getEnvFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return f, true, nil
}
