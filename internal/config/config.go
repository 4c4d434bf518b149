// Package config loads perfagg settings from JSONC files and CLI overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/perfagg/internal/metadata"
	"github.com/calvinalkan/perfagg/internal/report"
	"github.com/calvinalkan/perfagg/internal/scenario"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Depth            int      `json:"depth,omitempty"`
	Naming           string   `json:"naming,omitempty"`
	MetadataFile     string   `json:"metadata_file,omitempty"`
	StatisticsFile   string   `json:"statistics_file,omitempty"`
	Format           string   `json:"format,omitempty"`
	Operations       []string `json:"operations,omitempty"`
	Metrics          []string `json:"metrics,omitempty"`
	XField           string   `json:"x_field,omitempty"`
	RegressionXField string   `json:"regression_x_field,omitempty"`
	LogLevel         string   `json:"log_level,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Depth:            1,
		Naming:           string(scenario.NameByDir),
		MetadataFile:     scenario.DefaultMetadataFile,
		StatisticsFile:   scenario.DefaultStatisticsFile,
		Format:           string(report.FormatHTML),
		Operations:       []string{"Get Transfer State", "Initiate Transfer"},
		Metrics:          []string{"meanResTime", "sampleCount"},
		XField:           metadata.FieldOEMPlants,
		RegressionXField: metadata.FieldOEMContractDefs,
		LogLevel:         zerolog.LevelInfoValue,
	}
}

// FileName is the default project config file name.
const FileName = ".perfagg.json"

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/perfagg/config.json if set, otherwise ~/.config/perfagg/config.json.
// Returns empty string if home directory cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "perfagg", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "perfagg", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Env             map[string]string // environment variables
}

// Load reads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/perfagg/config.json or $XDG_CONFIG_HOME/perfagg/config.json)
// 3. Project config file at default location (.perfagg.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty).
//
// Command flags are applied on top by the caller.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := DefaultConfig()

	if path := globalPath(input.Env); path != "" {
		globalCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = path
			cfg = merge(cfg, globalCfg)
		}
	}

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	return cfg, nil
}

// loadProject loads the project config file (.perfagg.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProject(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		path := filepath.Join(workDir, FileName)

		cfg, loaded, err := loadFile(path, false)
		if err != nil || !loaded {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	// Check existence first to provide a clear "not found" error
	if _, err := os.Stat(path); err != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadFile(path, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, whether the file was loaded, and any error.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, false, nil
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// Parse decodes a JSONC document. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()

	var cfg Config

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Depth != 0 {
		base.Depth = overlay.Depth
	}

	if overlay.Naming != "" {
		base.Naming = overlay.Naming
	}

	if overlay.MetadataFile != "" {
		base.MetadataFile = overlay.MetadataFile
	}

	if overlay.StatisticsFile != "" {
		base.StatisticsFile = overlay.StatisticsFile
	}

	if overlay.Format != "" {
		base.Format = overlay.Format
	}

	if len(overlay.Operations) > 0 {
		base.Operations = overlay.Operations
	}

	if len(overlay.Metrics) > 0 {
		base.Metrics = overlay.Metrics
	}

	if overlay.XField != "" {
		base.XField = overlay.XField
	}

	if overlay.RegressionXField != "" {
		base.RegressionXField = overlay.RegressionXField
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

// Validate rejects values no command could run with.
func (c Config) Validate() error {
	opts := c.CollectOptions()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrConfigInvalid, err)
	}

	if c.XField == "" || c.RegressionXField == "" {
		return fmt.Errorf("%w: x_field and regression_x_field must not be empty", ErrConfigInvalid)
	}

	return nil
}

// CollectOptions returns the collector settings.
func (c Config) CollectOptions() scenario.CollectOptions {
	return scenario.CollectOptions{
		Depth:          c.Depth,
		Naming:         scenario.Naming(c.Naming),
		MetadataFile:   c.MetadataFile,
		StatisticsFile: c.StatisticsFile,
	}
}

// Lines renders the configuration as key=value lines in a stable order.
func (c Config) Lines() string {
	lines := []string{
		"effective_cwd=" + c.EffectiveCwd,
		"depth=" + strconv.Itoa(c.Depth),
		"naming=" + c.Naming,
		"metadata_file=" + c.MetadataFile,
		"statistics_file=" + c.StatisticsFile,
		"format=" + c.Format,
		"operations=" + strings.Join(c.Operations, ","),
		"metrics=" + strings.Join(c.Metrics, ","),
		"x_field=" + c.XField,
		"regression_x_field=" + c.RegressionXField,
		"log_level=" + c.LogLevel,
	}

	return strings.Join(lines, "\n")
}
