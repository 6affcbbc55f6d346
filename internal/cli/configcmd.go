package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagedit/pkg/config"
)

// configCommand creates the config command for printing the configuration.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as TOML.

The output reflects the --config file and DAGEDIT_* environment overrides
(including those from a .env file in the working directory). Redirect it to
a file to start a configuration of your own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if defaults {
				cfg = config.Default()
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults")

	return cmd
}
