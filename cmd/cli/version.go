package cli

import (
	"fmt"
	"os"

	"github.com/flowbaker/hubspot-executor/internal/version"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()

			if output == "" {
				fmt.Println(info.String())
				return nil
			}

			return printOutput(os.Stdout, output, info)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: json or yaml")

	return cmd
}
