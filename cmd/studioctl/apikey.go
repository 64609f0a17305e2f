package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrapstudio/internal/infra"
	"wrapstudio/internal/infra/credentials"
)

// newAPIKeyCmd stores a provider key in integration_tokens so the API can run
// without the key in its environment.
func newAPIKeyCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     "geminikey",
		Aliases: []string{"apikey"},
		Short:   "Persist an image provider API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := strings.ToLower(strings.TrimSpace(v.GetString("provider")))
			var envName string
			switch provider {
			case credentials.ProviderGemini:
				envName = "GEMINI_API_KEY"
			case credentials.ProviderQwen:
				envName = "QWEN_API_KEY"
			default:
				return fmt.Errorf("unsupported provider %q", provider)
			}
			_ = v.BindEnv("key", envName)
			key := strings.TrimSpace(v.GetString("key"))
			if key == "" {
				return fmt.Errorf("%s API key is required via --key or %s", strings.ToUpper(provider), envName)
			}

			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return errors.New("DATABASE_URL is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			pool, err := infra.NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "geminikey").Str("provider", provider).Logger()
			store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
			if err := store.SetToken(ctx, provider, key); err != nil {
				return fmt.Errorf("persist %s api key: %w", provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s api key stored\n", provider)
			return nil
		},
	}
	cmd.Flags().String("key", "", "API key (defaults to the provider's environment variable)")
	cmd.Flags().String("provider", credentials.ProviderGemini, "provider to configure (gemini or qwen)")
	_ = v.BindPFlag("key", cmd.Flags().Lookup("key"))
	_ = v.BindPFlag("provider", cmd.Flags().Lookup("provider"))
	return cmd
}
