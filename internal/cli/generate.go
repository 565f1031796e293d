package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/signkey/internal/config"
	"github.com/rileyhilliard/signkey/internal/errors"
	"github.com/rileyhilliard/signkey/internal/expect"
	"github.com/rileyhilliard/signkey/internal/logger"
	"github.com/rileyhilliard/signkey/internal/signer"
	"github.com/rileyhilliard/signkey/internal/ui"
)

// generateFlags holds the flags shared by the root command and `generate`.
type generateFlags struct {
	KeyPath   string
	Force     bool
	Timeout   time.Duration
	Mode      string
	Command   string
	Dir       string
	NoInspect bool
	Yes       bool
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a signing key with empty passwords",
	Long: `Run the configured key generator, answer each password prompt with the
configured response (an empty line by default), and print its output.

Examples:
  signkey generate
  signkey generate --key ~/.tauri/myapp.key --force
  signkey generate --command "cargo tauri signer generate" --timeout 30s`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd, &genFlags)
	rootCmd.AddCommand(generateCmd)
}

// addGenerateFlags registers the generate flags on cmd.
func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	cmd.Flags().StringVar(&f.KeyPath, "key", "", "private key path passed to the generator as -w (default new.key)")
	cmd.Flags().BoolVarP(&f.Force, "force", "f", false, "overwrite an existing key")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "max wait for each prompt and for exit, e.g. 30s (0 waits forever)")
	cmd.Flags().StringVar(&f.Mode, "mode", "", "how to attach to the generator: pty or pipe")
	cmd.Flags().StringVar(&f.Command, "command", "", "generator command, without -w")
	cmd.Flags().StringVar(&f.Dir, "dir", "", "directory to run the generator in")
	cmd.Flags().BoolVar(&f.NoInspect, "no-inspect", false, "skip the public key summary")
	cmd.Flags().BoolVarP(&f.Yes, "yes", "y", false, "overwrite an existing key without asking")
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config, f *generateFlags) {
	flags := cmd.Flags()
	if flags.Changed("key") {
		cfg.KeyPath = f.KeyPath
	}
	if flags.Changed("force") {
		cfg.Force = f.Force
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.Timeout
	}
	if flags.Changed("mode") {
		cfg.Mode = f.Mode
	}
	if flags.Changed("command") {
		cfg.Command = f.Command
	}
	if flags.Changed("dir") {
		cfg.Dir = f.Dir
	}
	if f.NoInspect {
		cfg.Output.Inspect = false
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := newLogger("[signkey]")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg, &genFlags)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := isInteractive()
	opts := GenerateOptions{
		Config:      cfg,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
		Interactive: interactive,
		AssumeYes:   genFlags.Yes,
		Spinner:     interactive,
		Logger:      newLogger("[expect]"),
	}
	if interactive && !genFlags.Yes {
		opts.Confirm = ui.Confirm
	}

	_, err = Generate(ctx, opts)
	return err
}

// GenerateOptions configures a Generate run.
type GenerateOptions struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer

	// Interactive allows asking before an existing key is replaced.
	Interactive bool
	// AssumeYes replaces an existing key without asking.
	AssumeYes bool
	// Spinner shows progress on Stderr while the generator runs.
	Spinner bool
	// Confirm asks the overwrite question; nil means the answer is no.
	Confirm func(title, description string) bool

	Logger logger.Logger
}

// Generate validates the config, runs the generator with the prompt script,
// prints the transcript to Stdout and the public key summary to Stderr.
// A non-zero generator status comes back as *ExitError along with the result.
func Generate(ctx context.Context, opts GenerateOptions) (*expect.Result, error) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	keyFile := resolveKeyPath(cfg)
	if err := confirmOverwrite(cfg, keyFile, opts); err != nil {
		return nil, err
	}

	mode, err := expect.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	expectOpts := expect.Options{
		Mode:              mode,
		Dir:               cfg.Dir,
		Env:               cfg.Env,
		Timeout:           cfg.Timeout,
		Encoding:          cfg.Output.Encoding,
		NormalizeNewlines: cfg.Output.NormalizeNewlines,
		Logger:            log,
	}

	command := signer.Command(cfg.Command, cfg.KeyPath, cfg.Force)

	var spin *ui.Spinner
	if opts.Spinner {
		spin = ui.NewSpinner(opts.Stderr, "Generating "+cfg.KeyPath)
		spin.Start()
	}

	res, err := expect.RunScript(ctx, command, cfg.Script(), expectOpts)
	if spin != nil {
		if err != nil || res.ExitCode != 0 {
			spin.Fail()
		} else {
			spin.Success()
		}
	}
	if err != nil {
		return nil, err
	}

	printTranscript(opts.Stdout, res.Transcript)

	if res.ExitCode != 0 {
		return res, &ExitError{Code: res.ExitCode}
	}

	if cfg.Output.Inspect {
		showPublicKey(opts.Stderr, signer.PublicKeyPath(keyFile), log)
	}
	return res, nil
}

// resolveKeyPath returns the key path as seen from this process. The generator
// runs in cfg.Dir, so a relative key lands there.
func resolveKeyPath(cfg *config.Config) string {
	if cfg.Dir == "" || filepath.IsAbs(cfg.KeyPath) {
		return cfg.KeyPath
	}
	return filepath.Join(cfg.Dir, cfg.KeyPath)
}

// confirmOverwrite turns an existing key into --force when the user agrees.
func confirmOverwrite(cfg *config.Config, keyFile string, opts GenerateOptions) error {
	err := signer.CheckOutput(keyFile, cfg.Force)
	if err == nil {
		return nil
	}
	if cfg.Force || !errors.IsCode(err, errors.ErrKey) {
		return err
	}
	// A directory fails even with force, so there is nothing to ask.
	if signer.CheckOutput(keyFile, true) != nil {
		return err
	}

	switch {
	case opts.AssumeYes:
	case opts.Interactive && opts.Confirm != nil:
		if !opts.Confirm(
			fmt.Sprintf("%s already exists. Overwrite it?", keyFile),
			"Anything signed with the old key can no longer be verified by the new public key.",
		) {
			return err
		}
	default:
		return err
	}

	cfg.Force = true
	return nil
}

func printTranscript(w io.Writer, text string) {
	fmt.Fprint(w, text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}
}

// showPublicKey prints the summary block for pubPath. A missing or unreadable
// key is only logged; the generator already succeeded.
func showPublicKey(w io.Writer, pubPath string, log logger.Logger) {
	if !signer.KeyExists(pubPath) {
		log.Debug("no public key at %s, skipping summary", pubPath)
		return
	}
	key, err := signer.ReadPublicKey(pubPath)
	if err != nil {
		log.Warn("couldn't read %s: %v", pubPath, err)
		return
	}
	ui.RenderFields(w, "Public key "+pubPath, keyFields(key))
}

// keyFields lists what inspect and generate show for a key.
func keyFields(key *signer.PublicKey) []ui.Field {
	fields := []ui.Field{
		{Label: "Key ID", Value: key.KeyID()},
		{Label: "Algorithm", Value: "Ed25519"},
		{Label: "Key", Value: key.KeyBase64()},
	}
	if key.Comment != "" {
		fields = append(fields, ui.Field{Label: "Comment", Value: key.Comment})
	}
	fields = append(fields, ui.Field{Label: "Updater pubkey", Value: key.Encoded})
	return fields
}
