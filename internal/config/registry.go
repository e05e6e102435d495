package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString   KeyType = "string"
	KeyTypeFloat    KeyType = "float"
	KeyTypeDuration KeyType = "duration"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type.
	Type KeyType
	// Desc is a human-readable description shown in `cram config list`.
	Desc string
	// DefaultStr is the string representation of the default/zero value.
	DefaultStr string

	// get returns the current value as a string.
	get func(*Config) string
	// set validates and applies the value to cfg, returning an error on type mismatch.
	set func(cfg *Config, value string) error
	// unset resets the key to its schema default.
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on type mismatch.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its schema default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

// weightKey builds a KeyEntry for one scoring.default_* override.
func weightKey(desc, defaultStr string, field func(*Config) **float64) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeFloat,
		Desc:       desc,
		DefaultStr: defaultStr,
		get: func(cfg *Config) string {
			if p := *field(cfg); p != nil {
				return strconv.FormatFloat(*p, 'g', -1, 64)
			}
			return defaultStr
		},
		set: func(cfg *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", v)
			}
			if f < 0 || f > 100 {
				return fmt.Errorf("weight %v out of range [0,100]", f)
			}
			*field(cfg) = &f
			return nil
		},
		unset: func(cfg *Config) { *field(cfg) = nil },
	}
}

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"user.name": {
		Type:       KeyTypeString,
		Desc:       "Display name",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.User.Name },
		set:        func(cfg *Config, v string) error { cfg.User.Name = v; return nil },
		unset:      func(cfg *Config) { cfg.User.Name = "" },
	},
	"scoring.default_assignment": weightKey("Fallback weight for assignments", "15",
		func(cfg *Config) **float64 { return &cfg.Scoring.DefaultAssignment }),
	"scoring.default_quiz": weightKey("Fallback weight for quizzes", "10",
		func(cfg *Config) **float64 { return &cfg.Scoring.DefaultQuiz }),
	"scoring.default_midterm": weightKey("Fallback weight for midterms", "30",
		func(cfg *Config) **float64 { return &cfg.Scoring.DefaultMidterm }),
	"scoring.default_final": weightKey("Fallback weight for finals", "40",
		func(cfg *Config) **float64 { return &cfg.Scoring.DefaultFinal }),
	"scoring.default_revision": weightKey("Fallback weight for revision", "5",
		func(cfg *Config) **float64 { return &cfg.Scoring.DefaultRevision }),
	"rank.watch_interval": {
		Type:       KeyTypeDuration,
		Desc:       "Refresh period for `cram rank --watch`",
		DefaultStr: "10m",
		get: func(cfg *Config) string {
			if cfg.Rank.WatchInterval == "" {
				return "10m"
			}
			return cfg.Rank.WatchInterval
		},
		set: func(cfg *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("not a duration: %q (use forms like 90s, 10m, 1h)", v)
			}
			if d <= 0 {
				return fmt.Errorf("interval must be positive, got %s", d)
			}
			cfg.Rank.WatchInterval = v
			return nil
		},
		unset: func(cfg *Config) { cfg.Rank.WatchInterval = "" },
	},
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}

// WatchInterval resolves the configured watch interval, falling back to
// 10 minutes when unset or unparseable.
func (c *Config) WatchInterval() time.Duration {
	if c.Rank.WatchInterval == "" {
		return 10 * time.Minute
	}
	d, err := time.ParseDuration(c.Rank.WatchInterval)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}
