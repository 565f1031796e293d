package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/signkey/internal/config"
	"github.com/rileyhilliard/signkey/internal/ui"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .signkey.yaml with the defaults",
	Long: `Write a .signkey.yaml in the current directory containing the default
settings, ready to edit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(".", config.ConfigFileName)
		overwrite := initForce
		if !overwrite && fileExists(path) && isInteractive() {
			overwrite = ui.Confirm(path+" already exists. Replace it?", "The current settings will be lost.")
		}
		return initConfig(cmd, path, overwrite)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

func initConfig(cmd *cobra.Command, path string, overwrite bool) error {
	if err := config.Save(config.DefaultConfig(), path, overwrite); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
