package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/docsearch/internal/entry"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// Project config file names, in lookup order.
const (
	ProjectConfigName    = ".docsearch.yaml"
	ProjectConfigNameAlt = ".docsearch.yml"
)

// Config represents the complete docsearch configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Content ContentConfig `yaml:"content" json:"content"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// SearchConfig configures ranking and the interactive session.
// Values are layered:
//  1. User config (~/.config/docsearch/config.yaml) - personal defaults
//  2. Project config (.docsearch.yaml) - per-site tuning
//  3. Env vars (DOCSEARCH_DEBOUNCE_MS, DOCSEARCH_LIMIT, ...) - highest priority
type SearchConfig struct {
	// DebounceMS is the delay between the last keystroke and the search.
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`

	// Limit is the maximum number of results shown.
	Limit int `yaml:"limit" json:"limit"`

	// SectionPriority orders sections for ranking ties.
	SectionPriority []string `yaml:"section_priority" json:"section_priority"`

	// CacheSize is the number of cached queries. 0 disables the cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// ContentConfig configures where entries come from.
type ContentConfig struct {
	// Dir is the content root, relative to the project root.
	Dir string `yaml:"dir" json:"dir"`

	// Manifest is an optional YAML file listing entries explicitly.
	Manifest string `yaml:"manifest" json:"manifest"`

	// Extensions are the file types scanned under Dir.
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Exclude holds glob patterns appended to the defaults.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Watch rebuilds the index when content changes.
	Watch bool `yaml:"watch" json:"watch"`

	// WatchDebounce coalesces file events, e.g. "300ms".
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
}

// ServerConfig configures the long-running commands.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// defaultExcludePatterns are always excluded. They use .docsearchignore
// syntax; a trailing slash prunes the directory at any depth.
var defaultExcludePatterns = []string{
	"node_modules/",
	".git/",
	"vendor/",
	"dist/",
	"build/",
	"_drafts/",
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchConfig{
			DebounceMS:      120,
			Limit:           8,
			SectionPriority: []string{"tutorial", "note", "example", "glossary"},
			CacheSize:       256,
		},
		Content: ContentConfig{
			Dir:           ".",
			Manifest:      "",
			Extensions:    []string{".md", ".mdx", ".html"},
			Exclude:       slices.Clone(defaultExcludePatterns),
			Watch:         true,
			WatchDebounce: "300ms",
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// Debounce returns the search debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

// Sections returns the parsed section priority. Unknown names are dropped.
func (c *Config) Sections() []entry.Section {
	return entry.ParseSections(c.Search.SectionPriority)
}

// WatchDebounceDuration returns the parsed watch debounce.
// Validate guarantees it parses.
func (c *Config) WatchDebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Content.WatchDebounce)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// ContentDir resolves Content.Dir against root.
func (c *Config) ContentDir(root string) string {
	if filepath.IsAbs(c.Content.Dir) {
		return c.Content.Dir
	}
	return filepath.Join(root, c.Content.Dir)
}

// ManifestPath resolves Content.Manifest against root. Empty when unset.
func (c *Config) ManifestPath(root string) string {
	if c.Content.Manifest == "" || filepath.IsAbs(c.Content.Manifest) {
		return c.Content.Manifest
	}
	return filepath.Join(root, c.Content.Manifest)
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/docsearch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/docsearch/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "docsearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "docsearch", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the project rooted at dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/docsearch/config.yaml)
//  3. Project config (.docsearch.yaml in dir)
//  4. Environment variables (DOCSEARCH_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
// .yaml takes precedence over .yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigName, ProjectConfigNameAlt} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

// loadYAML overlays the values present in a YAML file onto c.
// Keys absent from the file keep their current value, so explicit zeros
// and false are honored. Exclude patterns are appended, never replaced.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return doerrors.New(doerrors.ErrCodeConfigPermission,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	parsed := c.clone()
	parsed.Content.Exclude = nil
	if err := yaml.Unmarshal(data, parsed); err != nil {
		return doerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("check the YAML syntax, or run 'docsearch config init --force' to regenerate it")
	}

	exclude := slices.Clone(c.Content.Exclude)
	for _, p := range parsed.Content.Exclude {
		if !slices.Contains(exclude, p) {
			exclude = append(exclude, p)
		}
	}
	*c = *parsed
	c.Content.Exclude = exclude
	return nil
}

func (c *Config) clone() *Config {
	out := *c
	out.Search.SectionPriority = slices.Clone(c.Search.SectionPriority)
	out.Content.Extensions = slices.Clone(c.Content.Extensions)
	out.Content.Exclude = slices.Clone(c.Content.Exclude)
	return &out
}

// applyEnvOverrides applies DOCSEARCH_* environment variable overrides.
// Malformed numbers are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCSEARCH_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			c.Search.DebounceMS = n
		}
	}
	if v := os.Getenv("DOCSEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.Search.Limit = n
		}
	}
	if v := os.Getenv("DOCSEARCH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			c.Search.CacheSize = n
		}
	}
	if v := os.Getenv("DOCSEARCH_SECTION_PRIORITY"); v != "" {
		var sections []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sections = append(sections, s)
			}
		}
		c.Search.SectionPriority = sections
	}
	if v := os.Getenv("DOCSEARCH_CONTENT_DIR"); v != "" {
		c.Content.Dir = v
	}
	if v := os.Getenv("DOCSEARCH_WATCH"); v != "" {
		c.Content.Watch = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("DOCSEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// FindProjectRoot finds the project root directory.
// It looks for .docsearch.yaml/.yml or a .git directory by walking up the
// directory tree, and falls back to startDir.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if ProjectConfigPath(currentDir) != "" {
			return currentDir, nil
		}
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Search.DebounceMS < 0 {
		return invalid("search.debounce_ms must be non-negative, got %d", c.Search.DebounceMS)
	}
	if c.Search.Limit <= 0 {
		return invalid("search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.CacheSize < 0 {
		return invalid("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}
	for _, s := range c.Search.SectionPriority {
		if !entry.ParseSection(s).IsKnown() {
			return invalid("search.section_priority: unknown section %q (want tutorial, note, example or glossary)", s)
		}
	}

	for _, ext := range c.Content.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return invalid("content.extensions entries must start with '.', got %q", ext)
		}
	}
	if c.Content.WatchDebounce != "" {
		d, err := time.ParseDuration(c.Content.WatchDebounce)
		if err != nil || d < 0 {
			return invalid("content.watch_debounce must be a non-negative duration, got %q", c.Content.WatchDebounce)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return invalid("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return doerrors.ConfigError(fmt.Sprintf(format, args...), nil).
		WithSuggestion("fix the value in .docsearch.yaml or the matching DOCSEARCH_* variable")
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
