package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/version"
)

func newVersionCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the assetsync build",
		Long: `Print the assetsync release, the commit it was built from and the Go
toolchain. Builds from a dirty checkout are marked "-dirty".`,
		Example: `  assetsync version
  assetsync version --json | jq -r .version`,
		Args: cobra.NoArgs,
		// Version needs no project configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()

			if jsonOutput {
				j, err := info.JSON()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), j)

				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print build info as a JSON object")

	return cmd
}
