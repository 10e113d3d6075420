package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// FormulaMaxChars is the maximum character count for a submitted formula
	FormulaMaxChars int `json:"formula_max_chars"`

	// HTTPBind is the interface the HTTP API listens on.
	HTTPBind string `json:"http_bind,omitempty"`

	// HTTPPort is the port the HTTP API listens on.
	HTTPPort int `json:"http_port,omitempty"`

	// RateLimitPerMinute caps solve requests per client address.
	// 0 falls back to the default; there is no way to disable limiting from config.
	RateLimitPerMinute int `json:"rate_limit_per_minute,omitempty"`

	// SolveTimeoutSeconds bounds a single pipeline run, including all oracle calls.
	SolveTimeoutSeconds int `json:"solve_timeout_seconds,omitempty"`

	// ParameterSamples are the integer values substituted for a free parameter k
	// when verifying periodic solution families.
	ParameterSamples []int `json:"parameter_samples,omitempty"`

	// DisableHistory stops solutions from being written to the local database.
	DisableHistory bool `json:"disable_history,omitempty"`

	// DisableMarkup skips LaTeX rendering of steps and answers.
	DisableMarkup bool `json:"disable_markup,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type prefixes to disable entirely.
	// Known types: "math". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FormulaMaxChars:     2000,
		HTTPBind:            "127.0.0.1",
		HTTPPort:            5000,
		RateLimitPerMinute:  100,
		SolveTimeoutSeconds: 10,
		ParameterSamples:    []int{0, 1},
		LogLevel:            "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both the global directory and the nearest
// project .algenova directory found by walking upward from startDir.
// Project config takes precedence for scalar values; arrays are merged.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .algenova/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".algenova", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; string arrays are merged and deduplicated.
// ParameterSamples is replaced wholesale because its order and size are meaningful.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.FormulaMaxChars = firstNonZero(overlay.FormulaMaxChars, base.FormulaMaxChars)
	result.HTTPPort = firstNonZero(overlay.HTTPPort, base.HTTPPort)
	result.RateLimitPerMinute = firstNonZero(overlay.RateLimitPerMinute, base.RateLimitPerMinute)
	result.SolveTimeoutSeconds = firstNonZero(overlay.SolveTimeoutSeconds, base.SolveTimeoutSeconds)
	result.DBMaxOpenConns = firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.HTTPBind = overlay.HTTPBind
	if result.HTTPBind == "" {
		result.HTTPBind = base.HTTPBind
	}
	result.LogLevel = strings.ToLower(strings.TrimSpace(overlay.LogLevel))
	if result.LogLevel == "" {
		result.LogLevel = base.LogLevel
	}

	// Booleans: overlay wins if true, else base
	result.DisableHistory = base.DisableHistory || overlay.DisableHistory
	result.DisableMarkup = base.DisableMarkup || overlay.DisableMarkup

	result.ParameterSamples = overlay.ParameterSamples
	if len(result.ParameterSamples) == 0 {
		result.ParameterSamples = append([]int(nil), base.ParameterSamples...)
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
