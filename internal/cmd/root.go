package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/foldlog/internal/cmd/config"
	appconfig "github.com/Iron-Ham/foldlog/internal/config"
	"github.com/Iron-Ham/foldlog/internal/logging"
)

// rootOptions is the state shared by every command: the viper instance the
// configuration is read into and the global flags.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd(viper.GetViper()).Execute()
}

// NewRootCmd builds the command tree around v.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	opts := &rootOptions{v: v}

	rootCmd := &cobra.Command{
		Use:   "foldlog",
		Short: "Per-module logging with foldable crash dumps",
		Long: `Foldlog keeps a bounded history of leveled log messages and frame
snapshots per module and appends it to a session file when something goes
wrong. Dumps are shown as a tree that folds away low-importance detail.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is $HOME/.config/foldlog/config.yaml)")
	rootCmd.PersistentFlags().String("dump-dir", "", "dump directory (default is .foldlog/dumps)")
	_ = v.BindPFlag("dump.dir", rootCmd.PersistentFlags().Lookup("dump-dir"))

	rootCmd.AddCommand(
		newDumpsCmd(opts),
		newShowCmd(opts),
		newViewCmd(opts),
		newCleanCmd(opts),
		newWatchCmd(opts),
		newDemoCmd(opts),
	)
	config.Register(rootCmd, v)

	return rootCmd
}

func (o *rootOptions) initConfig() error {
	// Set defaults first so they're available even without a config file
	appconfig.SetDefaultsFor(o.v)
	appconfig.BindEnv(o.v)

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
		o.v.AddConfigPath(appconfig.ConfigDir())
		o.v.AddConfigPath(".")
	}

	// A missing config file is fine unless one was named explicitly
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// config returns the validated configuration.
func (o *rootOptions) config() (*appconfig.Config, error) {
	cfg, err := appconfig.LoadFrom(o.v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dumpDir returns the configured dump directory resolved against the
// working directory.
func (o *rootOptions) dumpDir(cfg *appconfig.Config) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cfg.Dump.ResolveDir(cwd), nil
}

// diagnostics returns a console diagnostics logger writing to the command's
// error stream.
func diagnostics(cmd *cobra.Command, cfg *appconfig.Config) *logging.Logger {
	return logging.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Diagnostics.Level, true)
}

// sessionFile resolves the session file argument: the named file, or the
// newest session file in the dump directory.
func (o *rootOptions) sessionFile(cfg *appconfig.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	dir, err := o.dumpDir(cfg)
	if err != nil {
		return "", err
	}
	return latestDump(dir)
}
