package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/partstream/partstream/cmd/util"
	"github.com/partstream/partstream/pkg/cursor"
)

// NewCursorCommand groups the cursor debugging tools: decoding a token
// issued in production, and minting one for testing a deployment.
func NewCursorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect and mint continuation cursors",
	}

	cmd.PersistentFlags().String("secret", "", "the application secret cursors are keyed from")
	util.MustBindPFlag("secret", cmd.PersistentFlags().Lookup("secret"))
	util.MustBindEnv("secret", "PARTSTREAM_SECRET")

	cmd.PersistentFlags().Duration("cursor-ttl", 0, "cursor time-to-live; 0 disables expiry checks")
	util.MustBindPFlag("cursor-ttl", cmd.PersistentFlags().Lookup("cursor-ttl"))
	util.MustBindEnv("cursor-ttl", "PARTSTREAM_CURSOR_TTL")

	cmd.AddCommand(newCursorInspectCommand())
	cmd.AddCommand(newCursorMintCommand())

	return cmd
}

func newCodecFromFlags() (*cursor.Codec, error) {
	secret := viper.GetString("secret")
	if secret == "" {
		return nil, errors.New("a secret is required; pass --secret or set PARTSTREAM_SECRET")
	}

	var opts []cursor.Opt
	if ttl := viper.GetDuration("cursor-ttl"); ttl > 0 {
		opts = append(opts, cursor.WithTTL(ttl))
	}

	return cursor.NewCodec(secret, opts...)
}

func newCursorInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Decode a continuation cursor and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := newCodecFromFlags()
			if err != nil {
				return err
			}

			payload, err := codec.Decode(args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if payload.IssuedAt > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "issued: %s\n", time.Unix(payload.IssuedAt, 0).UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newCursorMintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a continuation cursor for a given position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := newCodecFromFlags()
			if err != nil {
				return err
			}

			position := viper.GetInt("position")
			payload := cursor.Payload{Position: position}

			if raw := viper.GetString("context"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &payload.Context); err != nil {
					return fmt.Errorf("parse --context: %w", err)
				}
			}

			token, err := codec.Encode(payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int("position", 0, "continuation position to encode")
	util.MustBindPFlag("position", cmd.Flags().Lookup("position"))

	cmd.Flags().String("context", "", "JSON object of carry-through context values")
	util.MustBindPFlag("context", cmd.Flags().Lookup("context"))

	return cmd
}
