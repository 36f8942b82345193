// Package config provides CLI commands for inspecting foldlog configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/foldlog/internal/config"
)

// Register adds all config-related commands to the given parent command.
// v is the viper instance the root command reads configuration into.
func Register(parent *cobra.Command, v *viper.Viper) {
	parent.AddCommand(newConfigCmd(v))
}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View foldlog configuration",
		Long: `View foldlog configuration.

Without arguments, prints the effective configuration: defaults, the config
file and FOLDLOG_* environment variables merged.
Use 'config init' to create a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, v)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd, v)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigPath(cmd, v)
			},
		},
		newConfigInitCmd(),
		newThemeCmd(),
	)

	return configCmd
}

func runConfigShow(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := appconfig.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if v.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", v.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	if cwd, err := os.Getwd(); err == nil {
		fmt.Fprintf(out, "# Dump directory: %s\n", cfg.Dump.ResolveDir(cwd))
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(v.AllSettings()); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return encoder.Close()
}

func runConfigPath(cmd *cobra.Command, v *viper.Viper) error {
	out := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if v.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", v.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", configFile)
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_DUMP_DIR)\n", appconfig.EnvPrefix, appconfig.EnvPrefix)
	return nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long:  `Create a default config file at ~/.config/foldlog/config.yaml with all available options.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil && !force {
		return fmt.Errorf("config file already exists at %s\nUse --force to overwrite it", configFile)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

// defaultConfigContent is a commented config file holding the defaults.
const defaultConfigContent = `# Foldlog Configuration

# Settings every module logger starts from.
# Levels, most severe first: SILENT, ERROR, WARNING, INFO, DEBUG, VERBOSE, FRAME_ONLY
logging:
  # Least important level printed live
  print_level: WARNING
  # Least important level kept in history
  archive_level: VERBOSE
  # Message history capacity per module
  history_size: 256
  # Frame history capacity per module
  frame_history_size: 32
  # Write a dump whenever a module prints an error
  dump_on_error: true
  # Forward printed warnings to the diagnostics log
  mirror_warnings: false

# Per-module overrides. Unset fields inherit from logging.
modules: []
#  - id: net.tcp
#    print_level: INFO
#    history_size: 1024

dump:
  # Dump directory (default: .foldlog/dumps under the working directory)
  dir: ""
  # Session files kept by cleanup (-1 disables cleanup)
  keep_count: 10
  # Mirror every session file to latest_name
  dev_mode: false
  latest_name: latest.json
  # Write an APP_CLOSE dump when a session closes
  on_close: true

viewer:
  # Expand nodes whose most severe child is at or above this level
  fold_level: WARNING
  # One timeline across modules instead of grouping by module
  collated: true
  # Color theme: default, nord, dracula, monokai
  theme: default

# Foldlog's own diagnostics
diagnostics:
  # FRAME, VERBOSE, DEBUG, INFO, WARN, ERROR
  level: info
  # Write diagnostics.log in the dump directory instead of stderr
  file: false
  max_size_mb: 10
  max_backups: 3
`
