package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raushankrgupta/product-page-extractor/utils"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the serve API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := utils.GenerateToken(cfg.Server.JWTSecret, tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "pagex", "who the token is for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "how long the token stays valid")
	rootCmd.AddCommand(tokenCmd)
}
