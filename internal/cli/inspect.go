package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/signkey/internal/signer"
	"github.com/rileyhilliard/signkey/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show the ID and key of a public key",
	Long: `Parse a public key written by the Tauri signer and print its key ID,
the raw minisign key, and the value to paste into tauri.conf.json.

Without an argument, the configured key's .pub file is used.

Examples:
  signkey inspect
  signkey inspect ~/.tauri/myapp.key.pub`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := inspectPath(args)
		if err != nil {
			return err
		}
		return inspectKey(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// inspectPath picks the file to inspect: the argument, or the configured key's .pub.
func inspectPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig(newLogger("[signkey]"))
	if err != nil {
		return "", err
	}
	return signer.PublicKeyPath(resolveKeyPath(cfg)), nil
}

func inspectKey(cmd *cobra.Command, path string) error {
	key, err := signer.ReadPublicKey(path)
	if err != nil {
		return err
	}
	ui.RenderFields(cmd.OutOrStdout(), "Public key "+path, keyFields(key))
	return nil
}
