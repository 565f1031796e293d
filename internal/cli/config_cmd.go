package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/signkey/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration signkey would run with, after defaults, the
config file and SIGNKEY_* environment overrides are merged, as YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		out, err := config.Marshal(cfg)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if path == "" {
			fmt.Fprintln(w, "# no config file found, showing defaults")
		} else {
			fmt.Fprintf(w, "# from %s\n", path)
		}
		_, err = w.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
