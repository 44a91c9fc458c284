package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/partstream/partstream/internal/build"
)

// NewVersionCommand returns the command to get the partstream version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Return the partstream version",
		Long:  "Return the partstream version.",
		RunE:  version,
		Args:  cobra.NoArgs,
	}
}

func version(_ *cobra.Command, _ []string) error {
	log.Printf("partstream version %s date %s commit id %s", build.Version, build.Date, build.Commit)
	return nil
}
