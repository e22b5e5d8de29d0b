package http

import (
	"net/http"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/rs/zerolog"
)

// AuthenticatedHTTPClient applies the configured credentials to requests
// made outside the executor, such as fetching the OpenAPI document.
type AuthenticatedHTTPClient struct {
	client  HTTPClientProvider
	builder *RequestBuilder
	logger  zerolog.Logger
}

// NewAuthenticatedHTTPClient creates an HTTP client that applies authentication based on config
func NewAuthenticatedHTTPClient(cfg *config.Config, logger zerolog.Logger) *AuthenticatedHTTPClient {
	return NewAuthenticatedHTTPClientWith(newLambdaCapableClient(logger), cfg, logger)
}

func NewAuthenticatedHTTPClientWith(client HTTPClientProvider, cfg *config.Config, logger zerolog.Logger) *AuthenticatedHTTPClient {
	logger = logger.With().Str("component", "auth_http_client").Logger()
	return &AuthenticatedHTTPClient{
		client:  client,
		builder: NewRequestBuilder(logger, cfg),
		logger:  logger,
	}
}

// Do performs req with bearer, -H headers and SigV4 applied. The session
// cookie is left off; it only matters to the blog itself.
func (c *AuthenticatedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	logger := c.logger.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Logger()

	c.builder.applyHeaders(req)

	if err := c.builder.applyAuthentication(req.Context(), req); err != nil {
		logger.Error().Err(err).Msg("failed to apply authentication")
		return nil, err
	}

	logger.Debug().Msg("authentication applied, performing request")
	return c.client.Do(req)
}
