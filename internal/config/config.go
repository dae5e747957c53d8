// Package config handles loading, saving, and resolving the update-repos
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-tree dotfile searched upward from the
	// working directory before falling back to the global config.
	LocalConfigFilename = ".update-repos.yaml"

	// EnvConfigPath overrides config resolution when set.
	EnvConfigPath = "UPDATE_REPOS_CONFIG"

	configDirName  = "update-repos"
	configFileName = "config.yaml"
)

// Defaults holds fallback values applied when the matching flags are unset.
type Defaults struct {
	RemoteName     string `yaml:"remote_name"`
	Jobs           int    `yaml:"jobs"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	FetchRetries   int    `yaml:"fetch_retries"`
}

// Sync holds default behavior toggles for a sync run.
type Sync struct {
	NoPull          bool `yaml:"no_pull"`
	SkipDirty       bool `yaml:"skip_dirty"`
	StashDirty      bool `yaml:"stash_dirty"`
	UseRebase       bool `yaml:"use_rebase"`
	FetchAllRemotes bool `yaml:"fetch_all_remotes"`
}

// Config represents the update-repos configuration document.
type Config struct {
	// Root is the directory scanned for repositories. Relative paths are
	// resolved against the directory containing the config file.
	Root       string   `yaml:"root,omitempty"`
	NamePrefix string   `yaml:"name_prefix,omitempty"`
	Exclude    []string `yaml:"exclude"`
	Defaults   Defaults `yaml:"defaults"`
	Sync       Sync     `yaml:"sync"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		Defaults: Defaults{
			RemoteName:     "origin",
			Jobs:           1,
			TimeoutSeconds: 60,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, the UPDATE_REPOS_CONFIG env
// var, and finally os.UserConfigDir()/update-repos.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, configDirName), nil
}

// ConfigPath returns the full path to the global config file.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, configFileName), nil
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, configFileName), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// InitConfigPath returns the path a new config file should be written to.
// With no override in play this is the local dotfile in cwd, so freshly
// initialized config stays next to the tree it describes.
func InitConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfigPath) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}
	return filepath.Join(cwd, LocalConfigFilename), nil
}

// ResolveConfigPath returns the config path used for a run. Overrides and the
// env var win outright; otherwise the nearest local dotfile walking up from
// cwd is preferred, falling back to the global config file.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfigPath) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}
	return ConfigPath("")
}

// FindNearestConfigPath walks from cwd toward the filesystem root and returns
// the first local dotfile found, or "" when none exists.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Defaults.RemoteName == "" {
		cfg.Defaults.RemoteName = DefaultConfig().Defaults.RemoteName
	}
	if cfg.Defaults.Jobs <= 0 {
		cfg.Defaults.Jobs = DefaultConfig().Defaults.Jobs
	}
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = DefaultConfig().Defaults.TimeoutSeconds
	}
	if cfg.Defaults.FetchRetries < 0 {
		cfg.Defaults.FetchRetries = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects option combinations the sync engine refuses to honor.
func (c *Config) Validate() error {
	if c.Sync.SkipDirty && c.Sync.StashDirty {
		return errors.New("sync.skip_dirty and sync.stash_dirty are mutually exclusive")
	}
	return nil
}

// ConfigRoot returns the directory containing the config file, or "" when
// the path is blank.
func ConfigRoot(configPath string) string {
	if strings.TrimSpace(configPath) == "" {
		return ""
	}
	return filepath.Dir(configPath)
}

// EffectiveRoot resolves the configured scan root against the config file
// location. Absolute roots are returned unchanged; relative roots are joined
// to the directory containing configPath.
func EffectiveRoot(configPath string, cfg *Config) string {
	if cfg == nil {
		return ""
	}
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return ""
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	base := ConfigRoot(configPath)
	if base == "" {
		return filepath.Clean(root)
	}
	return filepath.Clean(filepath.Join(base, root))
}

// Save writes the config file to the given path, creating parent directories
// as needed.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func isConfigFilePath(path string) bool {
	if strings.HasSuffix(filepath.Base(path), LocalConfigFilename) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
