package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meditracker/medctl/pkg/medctl/fixture"
)

func NewSampleCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write sample medicine JSON files",
		Long:  "Write medicine.json and medicine_1.json to medicine_3.json, overwriting existing files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			r := &reporter{out: rt.Writer(), msg: rt.Writer()}
			r.banner()
			r.println("Creating sample JSON files...")

			written, err := fixture.WriteSamples(dir)
			for _, path := range written {
				r.printf("Created: %s\n", path)
			}
			if err != nil {
				r.printf("Error: %v\n", err)
				return nil
			}
			r.println("")
			r.println("Sample JSON files created!")
			r.println("Edit any JSON file and run create or update with --file to test your API.")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the files to")
	return cmd
}
