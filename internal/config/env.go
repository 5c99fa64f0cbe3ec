package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override, e.g. BISECT_LOW.
const EnvPrefix = "BISECT_"

// ApplyEnv overrides fields from BISECT_* variables. Unparsable values are
// reported rather than ignored.
func (c *Config) ApplyEnv() error {
	if err := envFloat("LOW", &c.Low); err != nil {
		return err
	}
	if err := envFloat("HIGH", &c.High); err != nil {
		return err
	}
	if err := envInt("MAX_ITERATIONS", &c.MaxIterations); err != nil {
		return err
	}
	if err := envFloat("DELAY_SECONDS", &c.DelaySeconds); err != nil {
		return err
	}
	if err := envBool("STEP_MODE", &c.StepMode); err != nil {
		return err
	}
	if v := os.Getenv(EnvPrefix + "THEME"); v != "" {
		c.Theme = v
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = f
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

// envBool accepts true/1/yes and false/0/no, case-insensitively.
func envBool(key string, dst *bool) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return fmt.Errorf("%s%s: invalid boolean %q", EnvPrefix, key, v)
	}
	return nil
}
