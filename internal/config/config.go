package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// EnvPrefix prefixes environment overrides, e.g. FOLDLOG_DUMP_DIR for
// dump.dir.
const EnvPrefix = "FOLDLOG"

// Config represents the complete foldlog configuration
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Modules     []ModuleConfig    `mapstructure:"modules"`
	Dump        DumpConfig        `mapstructure:"dump"`
	Viewer      ViewerConfig      `mapstructure:"viewer"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
}

// LoggingConfig holds the settings every module logger starts from
type LoggingConfig struct {
	// PrintLevel is the least important level printed live (default: "WARNING")
	PrintLevel string `mapstructure:"print_level"`
	// ArchiveLevel is the least important level kept in history (default: "VERBOSE")
	ArchiveLevel string `mapstructure:"archive_level"`
	// HistorySize is the message history capacity per module (default: 256)
	HistorySize int `mapstructure:"history_size"`
	// FrameHistorySize is the frame history capacity per module (default: 32)
	FrameHistorySize int `mapstructure:"frame_history_size"`
	// DumpOnError writes a dump whenever an error is printed (default: true)
	DumpOnError bool `mapstructure:"dump_on_error"`
	// MirrorWarnings forwards printed warnings to the diagnostics log (default: false)
	MirrorWarnings bool `mapstructure:"mirror_warnings"`
}

// ModuleConfig overrides LoggingConfig for one module. Modules are a list
// rather than a map because module ids may contain dots, which viper treats
// as key separators.
type ModuleConfig struct {
	// ID is the module id the overrides apply to
	ID               string `mapstructure:"id"`
	PrintLevel       string `mapstructure:"print_level"`
	ArchiveLevel     string `mapstructure:"archive_level"`
	HistorySize      int    `mapstructure:"history_size"`
	FrameHistorySize int    `mapstructure:"frame_history_size"`
	DumpOnError      *bool  `mapstructure:"dump_on_error"`
	MirrorWarnings   *bool  `mapstructure:"mirror_warnings"`
}

// DumpConfig controls where and how dumps are written
type DumpConfig struct {
	// Dir is the dump directory. Empty means .foldlog/dumps under the working
	// directory; ~ and relative paths are resolved.
	Dir string `mapstructure:"dir"`
	// KeepCount is how many session files cleanup keeps (default: 10, -1 disables cleanup)
	KeepCount int `mapstructure:"keep_count"`
	// DevMode mirrors every session file to LatestName (default: false)
	DevMode bool `mapstructure:"dev_mode"`
	// LatestName is the dev-mode mirror file name (default: "latest.json")
	LatestName string `mapstructure:"latest_name"`
	// OnClose writes an APP_CLOSE dump when a session closes (default: true)
	OnClose bool `mapstructure:"on_close"`
}

// ViewerConfig controls how dumps are presented
type ViewerConfig struct {
	// FoldLevel expands nodes whose effective fold level is at most this level (default: "WARNING")
	FoldLevel string `mapstructure:"fold_level"`
	// Collated shows one timeline across modules instead of grouping by module (default: true)
	Collated bool `mapstructure:"collated"`
	// Theme is the color theme for the viewer (default: "default")
	Theme string `mapstructure:"theme"`
}

// DiagnosticsConfig controls foldlog's own diagnostics log
type DiagnosticsConfig struct {
	// Level is the minimum diagnostics level (default: "info")
	Level string `mapstructure:"level"`
	// File writes diagnostics to diagnostics.log in the dump directory
	// instead of stderr (default: false)
	File bool `mapstructure:"file"`
	// MaxSizeMB is the size at which the diagnostics file rotates (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated diagnostics files kept (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	defaults := modlog.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			PrintLevel:       defaults.PrintLevel.String(),
			ArchiveLevel:     defaults.ArchiveLevel.String(),
			HistorySize:      defaults.HistorySize,
			FrameHistorySize: defaults.FrameHistorySize,
			DumpOnError:      defaults.DumpOnError,
			MirrorWarnings:   defaults.MirrorWarnings,
		},
		Modules: []ModuleConfig{},
		Dump: DumpConfig{
			Dir:        "", // Empty means use default: .foldlog/dumps
			KeepCount:  10,
			DevMode:    false,
			LatestName: "latest.json",
			OnClose:    true,
		},
		Viewer: ViewerConfig{
			FoldLevel: modlog.LevelWarning.String(),
			Collated:  true,
			Theme:     "default",
		},
		Diagnostics: DiagnosticsConfig{
			Level:      "info",
			File:       false,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// SetDefaultsFor registers default values with a specific viper instance.
func SetDefaultsFor(v *viper.Viper) {
	setDefaults(v)
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Logging defaults
	v.SetDefault("logging.print_level", defaults.Logging.PrintLevel)
	v.SetDefault("logging.archive_level", defaults.Logging.ArchiveLevel)
	v.SetDefault("logging.history_size", defaults.Logging.HistorySize)
	v.SetDefault("logging.frame_history_size", defaults.Logging.FrameHistorySize)
	v.SetDefault("logging.dump_on_error", defaults.Logging.DumpOnError)
	v.SetDefault("logging.mirror_warnings", defaults.Logging.MirrorWarnings)

	v.SetDefault("modules", defaults.Modules)

	// Dump defaults
	v.SetDefault("dump.dir", defaults.Dump.Dir)
	v.SetDefault("dump.keep_count", defaults.Dump.KeepCount)
	v.SetDefault("dump.dev_mode", defaults.Dump.DevMode)
	v.SetDefault("dump.latest_name", defaults.Dump.LatestName)
	v.SetDefault("dump.on_close", defaults.Dump.OnClose)

	// Viewer defaults
	v.SetDefault("viewer.fold_level", defaults.Viewer.FoldLevel)
	v.SetDefault("viewer.collated", defaults.Viewer.Collated)
	v.SetDefault("viewer.theme", defaults.Viewer.Theme)

	// Diagnostics defaults
	v.SetDefault("diagnostics.level", defaults.Diagnostics.Level)
	v.SetDefault("diagnostics.file", defaults.Diagnostics.File)
	v.SetDefault("diagnostics.max_size_mb", defaults.Diagnostics.MaxSizeMB)
	v.SetDefault("diagnostics.max_backups", defaults.Diagnostics.MaxBackups)
}

// BindEnv enables environment overrides on v. Nested keys use underscores,
// e.g. FOLDLOG_LOGGING_PRINT_LEVEL for logging.print_level.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for a specific viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "foldlog")
	}
	// Fall back to ~/.config/foldlog
	home, err := os.UserHomeDir()
	if err != nil {
		return ".foldlog"
	}
	return filepath.Join(home, ".config", "foldlog")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ResolveDir returns the resolved dump directory path.
// If Dir is empty, it returns the default path relative to baseDir.
// If Dir starts with ~, it expands to the user's home directory.
// If Dir is a relative path, it's resolved relative to baseDir.
func (d *DumpConfig) ResolveDir(baseDir string) string {
	if d.Dir == "" {
		return filepath.Join(baseDir, ".foldlog", "dumps")
	}

	path := d.Dir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// If relative path, resolve relative to baseDir
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// Rotation returns the diagnostics file rotation settings.
func (d *DiagnosticsConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{MaxSizeMB: d.MaxSizeMB, MaxBackups: d.MaxBackups}
}

// Module returns the overrides for id, if any. When id is listed more than
// once the last entry wins.
func (c *Config) Module(id string) (ModuleConfig, bool) {
	for i := len(c.Modules) - 1; i >= 0; i-- {
		if c.Modules[i].ID == id {
			return c.Modules[i], true
		}
	}
	return ModuleConfig{}, false
}

// ModuleSettings returns the logger settings for module id: the logging
// section with the module's overrides applied. Unparseable levels fall back
// to the package defaults; Validate reports them.
func (c *Config) ModuleSettings(id string) modlog.Config {
	out := modlog.DefaultConfig()
	out.PrintLevel = levelOr(c.Logging.PrintLevel, out.PrintLevel)
	out.ArchiveLevel = levelOr(c.Logging.ArchiveLevel, out.ArchiveLevel)
	if c.Logging.HistorySize > 0 {
		out.HistorySize = c.Logging.HistorySize
	}
	if c.Logging.FrameHistorySize > 0 {
		out.FrameHistorySize = c.Logging.FrameHistorySize
	}
	out.DumpOnError = c.Logging.DumpOnError
	out.MirrorWarnings = c.Logging.MirrorWarnings

	m, ok := c.Module(id)
	if !ok {
		return out
	}
	out.PrintLevel = levelOr(m.PrintLevel, out.PrintLevel)
	out.ArchiveLevel = levelOr(m.ArchiveLevel, out.ArchiveLevel)
	if m.HistorySize > 0 {
		out.HistorySize = m.HistorySize
	}
	if m.FrameHistorySize > 0 {
		out.FrameHistorySize = m.FrameHistorySize
	}
	if m.DumpOnError != nil {
		out.DumpOnError = *m.DumpOnError
	}
	if m.MirrorWarnings != nil {
		out.MirrorWarnings = *m.MirrorWarnings
	}
	return out
}

// ViewerFoldLevel returns the parsed viewer fold level.
func (c *Config) ViewerFoldLevel() modlog.Level {
	return levelOr(c.Viewer.FoldLevel, modlog.LevelWarning)
}

func levelOr(s string, fallback modlog.Level) modlog.Level {
	if s == "" {
		return fallback
	}
	l, err := modlog.ParseLevel(s)
	if err != nil {
		return fallback
	}
	return l
}
