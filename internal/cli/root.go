package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/signkey/internal/config"
	"github.com/rileyhilliard/signkey/internal/logger"
	"github.com/rileyhilliard/signkey/internal/ui"
)

// Persistent flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "signkey",
	Short: "Generate a Tauri updater signing key without typing passwords",
	Long: `signkey runs the Tauri signer (npm run tauri signer generate -- -w new.key),
answers both of its password prompts with an empty line, and prints what
the signer wrote once it exits.

Running signkey with no subcommand is the same as 'signkey generate'.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .signkey.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show info-level logs")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	addGenerateFlags(rootCmd, &genFlags)
}

// ExitError carries the generator's non-zero status out of an otherwise
// successful run. It is not printed; Execute only uses the code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("key generator exited with status %d", e.Code)
}

// Execute runs the root command and exits the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(handleError(err, os.Stderr))
	}
}

// handleError prints err and returns the process exit code for it.
func handleError(err error, w io.Writer) int {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	ui.RenderError(w, err)
	if isUnknownCommandError(err) {
		fmt.Fprintln(w, "\n  Run 'signkey --help' to see the available commands and flags.")
	}
	return 1
}

// isUnknownCommandError checks for Cobra's errors about bad commands or flags.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// loadConfig finds and loads the config honoring --config, falling back to defaults.
func loadConfig(log logger.Logger) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if path == "" {
		log.Debug("no config file found, using defaults")
	} else {
		log.Debug("loaded config from %s", path)
	}
	return cfg, nil
}

// newLogger returns the CLI logger for the given prefix, honoring --verbose.
func newLogger(prefix string) logger.Logger {
	if verbose {
		return logger.NewVerboseLogger(prefix)
	}
	return logger.NewEnvLogger(prefix)
}

// isInteractive reports whether both stdin and stderr are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}
