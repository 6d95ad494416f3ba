// Package cli provides the command-line interface for routinesync.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/enunezf/routinesync/internal/config"
)

var (
	v       = viper.New()
	cfgFile string
	logger  = zap.NewNop()

	// Version information
	version = "0.1.0"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "routinesync",
	Short: "routinesync - keep SQL Server routines in sync with .sql files",
	Long: `routinesync deploys stored procedures, functions and triggers kept as
individual .sql files to a SQL Server database.

It compares every file with the definition stored in the database, reports
which objects are new or changed, and applies them with one transactional
script: either every object is updated or none is.

Objects that exist only in the database are never dropped.

Example:
  routinesync sync --server localhost --database app --user sa --password secret \
      --objects-dir ./procedures_and_triggers`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Config file (yaml, toml or json)")

	// Connection
	flags.StringP("connection-string", "c", "", "Full connection string (overrides the individual connection flags)")
	flags.StringP("server", "s", "", "SQL Server hostname or IP address")
	flags.StringP("database", "d", "", "Database name")
	flags.StringP("user", "u", "", "Username for SQL authentication")
	flags.StringP("password", "p", "", "Password for SQL authentication")
	flags.BoolP("trusted", "t", false, "Use Windows/Integrated authentication")
	flags.Int("port", 1433, "SQL Server port")
	flags.Bool("trust-cert", false, "Trust server certificate (insecure)")

	// Objects
	flags.StringP("objects-dir", "o", config.DefaultObjectsDir(), "Directory holding one .sql file per object")
	flags.String("extension", ".sql", "Extension of object files")

	// Behavior
	flags.Bool("dry-run", false, "Show what would be executed without making changes")
	flags.BoolP("yes", "y", false, "Apply without asking for confirmation")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Duration("timeout", config.DefaultTimeout, "Maximum duration of a run")

	// Viper keys use underscores, flags use dashes
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	config.SetDefaults(v)
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// initConfig reads the config file, if any, and sets up logging
func initConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		if err := config.ReadFile(v, cfgFile); err != nil {
			return err
		}
	}

	l, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	logger = l
	return nil
}

// newLogger builds a console logger on stderr
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadConfig returns the merged configuration for the current command
func loadConfig() config.Config {
	return config.Load(v)
}
