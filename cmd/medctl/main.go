package main

import (
	"os"

	medctlcmd "github.com/meditracker/medctl/pkg/medctl/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := medctlcmd.NewRootCommand(medctlcmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
