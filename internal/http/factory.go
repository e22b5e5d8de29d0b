package http

import (
	"net/http"

	"github.com/recipeblog/recipeq/internal/config"
	recipehttp "github.com/recipeblog/recipeq/pkg/http"
	"github.com/recipeblog/recipeq/pkg/openapi"
	"github.com/rs/zerolog"
)

// ClientFactory centralizes executor creation with dependency injection support
type ClientFactory struct {
	logger zerolog.Logger
}

// NewClientFactory creates a new client factory
func NewClientFactory(logger zerolog.Logger) *ClientFactory {
	return &ClientFactory{
		logger: logger,
	}
}

// CreateExecutor wires an Executor from cfg: a Lambda-capable client, and an
// OpenAPI catalog when --openapi is set.
func (f *ClientFactory) CreateExecutor(cfg *config.Config) *Executor {
	var catalog *openapi.Catalog
	if cfg.OpenAPIURL != "" {
		catalog = f.CreateCatalog(cfg)
	}
	return f.CreateExecutorWithCatalog(cfg, catalog)
}

// CreateExecutorWithCatalog is CreateExecutor with a caller-owned catalog,
// which may be nil.
func (f *ClientFactory) CreateExecutorWithCatalog(cfg *config.Config, catalog *openapi.Catalog) *Executor {
	httpClient := newLambdaCapableClient(f.logger)
	if catalog == nil {
		return f.CreateExecutorWithCustomClient(cfg, httpClient, nil)
	}
	return f.CreateExecutorWithCustomClient(cfg, httpClient, catalog)
}

// CreateExecutorWithCustomClient creates an Executor with a custom HTTP client
// This is useful for testing with mock HTTP clients
func (f *ClientFactory) CreateExecutorWithCustomClient(
	cfg *config.Config,
	httpClient HTTPClientProvider,
	catalog FieldCatalog,
) *Executor {
	return NewExecutorWithDependencies(
		f.logger.With().Str("component", "http_executor").Logger(),
		httpClient,
		catalog,
		NewURLResolver(cfg, catalog),
		NewResponseHandler(f.logger, cfg),
		cfg,
	)
}

// CreateCatalog returns a catalog for cfg.OpenAPIURL that fetches the
// document with the same credentials as blog requests.
func (f *ClientFactory) CreateCatalog(cfg *config.Config) *openapi.Catalog {
	return openapi.NewCatalog(NewAuthenticatedHTTPClient(cfg, f.logger), cfg.OpenAPIURL)
}

func newLambdaCapableClient(logger zerolog.Logger) *recipehttp.Client {
	client, err := recipehttp.NewClient()
	if err != nil {
		// Fallback to a basic client that can still do HTTP requests
		logger.Warn().Err(err).Msg("failed to create lambda-capable client, falling back to basic client")
		return &recipehttp.Client{Client: http.DefaultClient}
	}
	return client
}
