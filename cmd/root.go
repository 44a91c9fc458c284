// Package cmd contains all the commands included in the partstream binary.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand enables all children commands to read flags from CLI
// flags, environment variables prefixed with PARTSTREAM, or config.yaml
// (in that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("PARTSTREAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	configPaths := []string{"/etc/partstream", "$HOME/.partstream", "."}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	_ = viper.ReadInConfig()

	return &cobra.Command{
		Use:   "partstream",
		Short: "Progressive delivery of chunked API responses with stateless, tamper-evident cursors",
		Long: `Progressive delivery of chunked API responses with stateless, tamper-evident cursors.

partstream splits an expensive response into named parts and serves them a
window at a time, handing the client an encrypted continuation cursor
instead of holding server-side session state.`,
	}
}
