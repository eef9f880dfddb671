// Package cmd implements the CLI commands for ticket-watcher.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/ticket-watcher/internal/config"
	"github.com/donaldgifford/ticket-watcher/pkg/logger"
)

// Process exit codes.
const (
	exitSuccess     = 0
	exitFailed      = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// exitError carries a process exit code. A nil err means the failure has
// already been reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error  { return &exitError{code: exitUsage, err: err} }
func failedError(err error) error { return &exitError{code: exitFailed, err: err} }

var rootCmd = &cobra.Command{
	Use:   "ticket-watcher",
	Short: "Wait for Vue Cinemas tickets and send one notification",
	Long: "ticket-watcher polls the Vue Cinemas performance catalog for one movie until\n" +
		"a bookable performance shows up, sends a single notification through\n" +
		"Pushover, Discord or Telegram, and exits.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvFile,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "config.yaml", "config file path")
	pf.String("env-file", ".env", "dotenv file loaded before the config is read")
	pf.String("log-level", "", "override logging.level (debug, info, warn, error)")
	pf.String("log-format", "", "override logging.format (console, text, json)")

	for _, name := range []string{"config", "env-file", "log-level", "log-format"} {
		cobra.CheckErr(viper.BindPFlag(name, pf.Lookup(name)))
	}
	viper.SetEnvPrefix("TW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		watchCmd(),
		queryCmd(),
		checkCmd(),
		notifyTestCmd(),
		statusCmd(),
		versionCommand(),
	)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exitCode(rootCmd.ExecuteContext(ctx), os.Stderr)
}

// exitCode maps a command error to an exit code, printing it to w when it
// has not been reported yet. Errors without a code are cobra usage errors.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return exitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(w, "Error:", ee.err)
		}
		return ee.code
	}

	fmt.Fprintln(w, "Error:", err)
	return exitUsage
}

// loadEnvFile loads the dotenv file. A missing file is only an error when
// it was asked for explicitly.
func loadEnvFile(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("env-file")
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	explicit := cmd.Flags().Changed("env-file") || os.Getenv("TW_ENV_FILE") != ""

	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return nil
	default:
		return usageError(fmt.Errorf("loading env file: %w", err))
	}
}

// loadConfig reads the config file and applies the logging flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, usageError(fmt.Errorf("loading config: %w", err))
	}

	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if format := viper.GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}
