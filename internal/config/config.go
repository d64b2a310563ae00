// Package config provides configuration management for assetsync.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (ASSETSYNC_ prefix)
//  3. Config file (.assetsync.yaml)
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// FileName is the config file name looked up in the project directory.
const FileName = ".assetsync.yaml"

// Defaults.
const (
	DefaultOutputDirectory = "lib/constants/assets"
	DefaultAssetsDirectory = "assets"
	DefaultManifest        = "pubspec.yaml"
	DefaultClassName       = "Assets"
	DefaultDebounce        = 600 * time.Millisecond
)

// ErrInvalid marks configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// aliases maps the camelCase spellings accepted in config files onto the
// canonical keys.
var aliases = map[string]string{
	"autoSync":        "auto-sync",
	"outputDirectory": "output-directory",
	"assetsDirectory": "assets-directory",
	"className":       "class-name",
	"catchUp":         "catch-up",
}

var dartClassName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Config represents the global configuration for assetsync.
type Config struct {
	// ProjectDir is the Flutter project root. Relative paths below are
	// resolved against it.
	ProjectDir string `mapstructure:"project-dir" json:"projectDir"`

	// AutoSync enables event-triggered passes.
	AutoSync bool `mapstructure:"auto-sync" json:"autoSync"`

	// OutputDirectory receives the generated Dart files. Both "/" and "\"
	// are accepted as separators.
	OutputDirectory string `mapstructure:"output-directory" json:"outputDirectory"`

	// AssetsDirectory is the asset root.
	AssetsDirectory string `mapstructure:"assets-directory" json:"assetsDirectory"`

	// Manifest is the pubspec file name.
	Manifest string `mapstructure:"manifest" json:"manifest"`

	// ClassName names the aggregator class.
	ClassName string `mapstructure:"class-name" json:"className"`

	// Debounce is the quiet period before an event-triggered pass.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`

	// CatchUp queues one follow-up pass for changes that arrive mid-pass.
	CatchUp bool `mapstructure:"catch-up" json:"catchUp"`

	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// LogFile, when set, sends logs to a rotating file instead of stderr.
	LogFile string `mapstructure:"log-file" json:"logFile"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		ProjectDir:      ".",
		AutoSync:        true,
		OutputDirectory: DefaultOutputDirectory,
		AssetsDirectory: DefaultAssetsDirectory,
		Manifest:        DefaultManifest,
		ClassName:       DefaultClassName,
		Debounce:        DefaultDebounce,
		LogLevel:        LogLevelInfo,
		LogFormat:       LogFormatText,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError).
			Error("invalid log level: must be one of debug, info, warn, error")),
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON).
			Error("invalid log format: must be one of text, json")),
		validation.Field(&c.OutputDirectory, validation.Required),
		validation.Field(&c.AssetsDirectory, validation.Required),
		validation.Field(&c.Manifest, validation.Required),
		validation.Field(&c.ClassName, validation.Required, validation.Match(dartClassName).
			Error("must be a valid Dart class name")),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)).Error("must not be negative")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// OutputDir returns the generated code directory relative to the project
// using the host separator.
func (c *Config) OutputDir() string {
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(c.OutputDirectory, `\`, "/")))
}

// OutputPath returns the generated code directory joined with ProjectDir.
func (c *Config) OutputPath() string {
	return filepath.Join(c.ProjectDir, c.OutputDir())
}

// AssetRoot returns the asset root joined with ProjectDir.
func (c *Config) AssetRoot() string {
	return filepath.Join(c.ProjectDir, filepath.FromSlash(c.AssetsDirectory))
}

// ManifestPath returns the manifest joined with ProjectDir.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.ProjectDir, c.Manifest)
}

// SettingsPath is the file persisting the auto-sync flag: the loaded config
// file, or .assetsync.yaml in the project directory.
func (c *Config) SettingsPath() string {
	if c.ConfigFile != "" {
		return c.ConfigFile
	}

	return filepath.Join(c.ProjectDir, FileName)
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	if err := configureFile(v, configFile, v.GetString("project-dir")); err != nil {
		return nil, err
	}

	for alias, key := range aliases {
		v.RegisterAlias(alias, key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Store the resolved config file path so downstream code can locate it.
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("project-dir", d.ProjectDir)
	v.SetDefault("auto-sync", d.AutoSync)
	v.SetDefault("output-directory", d.OutputDirectory)
	v.SetDefault("assets-directory", d.AssetsDirectory)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("class-name", d.ClassName)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("catch-up", d.CatchUp)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("log-file", d.LogFile)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("ASSETSYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile, projectDir string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	v.SetConfigType("yaml")

	if projectDir != "" && projectDir != "." {
		v.AddConfigPath(projectDir)
	}

	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "assetsync"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	// Bind the current command's own flags.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	// Walk up to root and bind all persistent flags at each level.
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
