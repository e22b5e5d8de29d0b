package cli

import (
	"github.com/recipeblog/recipeq/internal/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger zerolog.Logger
}

// NewMCPHandler creates a new MCP command handler
func NewMCPHandler(logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{
		logger: logger.With().Str("handler", "mcp").Logger(),
	}
}

// Execute serves the profiles as MCP tools over stdio
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, h.logger)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("server", cfg.Server).
		Str("openapi_url", cfg.OpenAPIURL).
		Strs("allowed_profiles", cfg.MCP.AllowedProfiles).
		Bool("sigv4", cfg.SigV4Enabled).
		Int("headers", len(cfg.Headers)).
		Msg("starting MCP server")

	server := mcp.NewServer(h.logger, cfg)
	return server.Serve(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout())
}
