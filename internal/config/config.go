package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the top-level cram configuration.
type Config struct {
	User    UserConfig    `toml:"user"`
	Scoring ScoringConfig `toml:"scoring"`
	Rank    RankConfig    `toml:"rank"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

// ScoringConfig overrides the built-in fallback weight per category.
// Unset fields keep the engine defaults (assignment 15, quiz 10,
// midterm 30, final 40, revision 5).
type ScoringConfig struct {
	DefaultAssignment *float64 `toml:"default_assignment,omitempty"`
	DefaultQuiz       *float64 `toml:"default_quiz,omitempty"`
	DefaultMidterm    *float64 `toml:"default_midterm,omitempty"`
	DefaultFinal      *float64 `toml:"default_final,omitempty"`
	DefaultRevision   *float64 `toml:"default_revision,omitempty"`
}

// RankConfig controls the rank command's defaults.
type RankConfig struct {
	// WatchInterval is the refresh period for `cram rank --watch`,
	// as a Go duration string. Empty means 10m.
	WatchInterval string `toml:"watch_interval"`
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	CacheDir   string
	StateDir   string
	ConfigFile string
	DBFile     string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	cacheDir := envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	cramConfig := filepath.Join(configDir, "cram")
	cramData := filepath.Join(dataDir, "cram")

	return Paths{
		ConfigDir:  cramConfig,
		DataDir:    cramData,
		CacheDir:   filepath.Join(cacheDir, "cram"),
		StateDir:   filepath.Join(stateDir, "cram"),
		ConfigFile: filepath.Join(cramConfig, "config.toml"),
		DBFile:     filepath.Join(cramData, "cram.db"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := &Config{}

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Initialized returns true if cram has been set up.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

// FloatPtr returns a pointer to a float64 value.
func FloatPtr(v float64) *float64 {
	return &v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
