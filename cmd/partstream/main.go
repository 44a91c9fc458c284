package main

import (
	"os"

	"github.com/partstream/partstream/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	rootCmd.AddCommand(cmd.NewVersionCommand())
	rootCmd.AddCommand(cmd.NewCursorCommand())
	rootCmd.AddCommand(cmd.NewClearCacheCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
