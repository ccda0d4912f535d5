package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meditracker/medctl/pkg/medctl/output"
	"github.com/meditracker/medctl/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show medctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			// Runs standalone in tests, so the runtime is optional here.
			rt, _ := getRuntime(cmd)
			writer := cmd.OutOrStdout()
			if rt != nil {
				writer = rt.Writer()
			}

			switch format := output.Format(outputFormat); format {
			case output.FormatJSON, output.FormatYAML:
				if err := output.WriteObject(writer, format, info); err != nil {
					return fmt.Errorf("failed to render version: %w", err)
				}
				return nil
			case "", output.FormatRaw, output.FormatTable:
				_, _ = fmt.Fprintln(writer, info.String())
				return nil
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, yaml")

	return cmd
}
