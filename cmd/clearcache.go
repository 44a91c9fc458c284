package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/partstream/partstream/cmd/util"
	"github.com/partstream/partstream/pkg/cache"
)

// NewClearCacheCommand returns the command that flushes cached part values
// from a shared redis deployment.
func NewClearCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove cached part values from redis",
		Long:  "Remove cached part values from redis. Cached values are recomputable; clearing only costs the next requests a recomputation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.NewRedisCache(cmd.Context(),
				cache.WithAddr(viper.GetString("redis-addr")),
				cache.WithCredentials(viper.GetString("redis-username"), viper.GetString("redis-password")),
				cache.WithDB(viper.GetInt("redis-db")),
			)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Purge(cmd.Context(), viper.GetString("pattern"))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", removed)
			return nil
		},
	}

	cmd.Flags().String("redis-addr", "localhost:6379", "comma-separated redis addresses")
	util.MustBindPFlag("redis-addr", cmd.Flags().Lookup("redis-addr"))
	util.MustBindEnv("redis-addr", "PARTSTREAM_REDIS_ADDR")

	cmd.Flags().String("redis-username", "", "redis username")
	util.MustBindPFlag("redis-username", cmd.Flags().Lookup("redis-username"))
	util.MustBindEnv("redis-username", "PARTSTREAM_REDIS_USERNAME")

	cmd.Flags().String("redis-password", "", "redis password")
	util.MustBindPFlag("redis-password", cmd.Flags().Lookup("redis-password"))
	util.MustBindEnv("redis-password", "PARTSTREAM_REDIS_PASSWORD")

	cmd.Flags().Int("redis-db", 0, "redis logical database")
	util.MustBindPFlag("redis-db", cmd.Flags().Lookup("redis-db"))
	util.MustBindEnv("redis-db", "PARTSTREAM_REDIS_DB")

	cmd.Flags().String("pattern", "partstream:*", "key pattern to remove")
	util.MustBindPFlag("pattern", cmd.Flags().Lookup("pattern"))

	return cmd
}
