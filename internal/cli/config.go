package cli

import (
	"context"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig returns the validated configuration stored on the command's
// context by the root command, loading it from flags when absent.
func loadConfig(cmd *cobra.Command, logger zerolog.Logger) (*config.Config, error) {
	cfg, ok := config.FromContext(commandContext(cmd))
	if !ok {
		var err error
		cfg, err = config.LoadFromFlags(cmd.Flags())
		if err != nil {
			logger.Error().Err(err).Msg("failed to load configuration")
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("configuration validation failed")
		return nil, err
	}
	return cfg, nil
}
