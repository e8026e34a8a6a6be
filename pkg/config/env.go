// Package config provides small helpers for reading typed values from the
// environment. Unset or empty variables yield the supplied default; values
// that fail to parse are logged and also fall back to the default.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultVal when unset or empty.
func GetEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetEnvInt parses key as a base-10 integer.
func GetEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return n
}

// GetEnvFloat parses key as a float64.
func GetEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return f
}

// GetEnvBool accepts the forms understood by strconv.ParseBool
// ("1", "t", "true", "0", "f", "false", ...).
func GetEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return b
}

// GetEnvDuration parses key with time.ParseDuration ("30s", "5m", "1h30m").
func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return d
}

// GetEnvStringList splits key on commas, trimming blanks and dropping empty
// entries. An unset variable or one with no usable entries yields defaultVal.
func GetEnvStringList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func warnInvalid(key, value string, defaultVal any) {
	slog.Warn("invalid environment value, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.Any("default", defaultVal))
}
