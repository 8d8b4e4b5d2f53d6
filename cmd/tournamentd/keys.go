package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"onchaintournament/internal/codec"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Inspect devnet signing keys",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the ed25519 public key derived from a seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, _ := cmd.Flags().GetString("seed")
			if seed == "" {
				return fmt.Errorf("--seed is required")
			}
			pub, _ := codec.KeyFromSeed(seed)
			cmd.Printf("base64: %s\nhex:    %s\n", base64.StdEncoding.EncodeToString(pub), hex.EncodeToString(pub))
			return nil
		},
	}
	show.Flags().String("seed", "", "key seed")
	cmd.AddCommand(show)
	return cmd
}
