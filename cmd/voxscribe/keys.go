package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/voxscribe/auth/apikey"
	"github.com/kbukum/voxscribe/auth/jwt"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Create API keys for auth.api_keys",
	}
	var cost int
	generate := &cobra.Command{
		Use:   "generate <name>",
		Short: "Generate a key and print the config entry holding its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := apikey.Generate()
			if err != nil {
				return err
			}
			hash, err := apikey.Hash(key, cost)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key: %s\n\n", key)
			fmt.Fprintf(out, "auth:\n  api_keys:\n    - name: %q\n      hash: %q\n", args[0], hash)
			return nil
		},
	}
	generate.Flags().IntVar(&cost, "cost", apikey.DefaultCost, "bcrypt cost")

	hash := &cobra.Command{
		Use:   "hash <key>",
		Short: "Hash an existing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := apikey.Hash(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	hash.Flags().IntVar(&cost, "cost", apikey.DefaultCost, "bcrypt cost")

	cmd.AddCommand(generate, hash)
	return cmd
}

func newTokenCmd(flags *globalFlags) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token signed with auth.jwt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}
			if cfg.Auth.JWT == nil {
				return errors.New("auth.jwt is not configured")
			}
			jwtCfg := *cfg.Auth.JWT
			if ttl > 0 {
				jwtCfg.TokenTTL = ttl
			}
			svc, err := jwt.NewService(&jwtCfg)
			if err != nil {
				return err
			}
			token, err := svc.Issue(args[0], jwt.ScopeTranscribe)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from auth.jwt.token_ttl)")
	return cmd
}
