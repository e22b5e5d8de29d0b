package cli

import (
	"github.com/recipeblog/recipeq/internal/http"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// URLHandler prints the URL a profile would request without sending it
type URLHandler struct {
	logger zerolog.Logger
}

// NewURLHandler creates a new URL command handler
func NewURLHandler(logger zerolog.Logger) *URLHandler {
	return &URLHandler{
		logger: logger.With().Str("handler", "url").Logger(),
	}
}

// Execute expects the profile name followed by name=value arguments
func (h *URLHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, h.logger)
	if err != nil {
		return err
	}

	profile, err := cfg.Profile(args[0])
	if err != nil {
		return err
	}

	values, err := fieldValues(cmd, profile, args[1:])
	if err != nil {
		return err
	}

	noSend := *cfg
	noSend.NoSend = true
	executor := http.NewClientFactory(h.logger).CreateExecutor(&noSend)
	return executor.Execute(commandContext(cmd), cmd.OutOrStdout(), profile.Name, values)
}
