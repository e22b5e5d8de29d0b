package cli

import (
	"strings"

	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/http"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// HTTPHandler sends one profile's request built from flags and arguments
type HTTPHandler struct {
	logger     zerolog.Logger
	profile    string
	positional string
}

// NewHTTPHandler creates a handler for the named profile
func NewHTTPHandler(logger zerolog.Logger, profile string) *HTTPHandler {
	return &HTTPHandler{
		logger:  logger.With().Str("handler", "http").Str("profile", profile).Logger(),
		profile: profile,
	}
}

// WithPositional takes the first argument as the value of field, which
// must not be blank
func (h *HTTPHandler) WithPositional(field string) *HTTPHandler {
	h.positional = field
	return h
}

// Execute builds and sends the request, writing the response to the
// command's output
func (h *HTTPHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, h.logger)
	if err != nil {
		return err
	}

	profile, err := cfg.Profile(h.profile)
	if err != nil {
		return err
	}

	if h.positional != "" {
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			return errors.New(errors.ErrorTypeValidation, "missing required argument").
				WithContext("field", h.positional).
				WithContext("profile", h.profile)
		}
		args = append([]string{h.positional + "=" + args[0]}, args[1:]...)
	}

	values, err := fieldValues(cmd, profile, args)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Int("fields", len(values)).
		Bool("no_send", cfg.NoSend).
		Msg("processing profile command")

	executor := http.NewClientFactory(h.logger).CreateExecutor(cfg)
	return executor.Execute(commandContext(cmd), cmd.OutOrStdout(), h.profile, values)
}
