package http

import (
	"context"
	"io"
	"net/http"

	"github.com/recipeblog/recipeq/internal/config"
)

// HTTPClientProvider defines interface for the underlying HTTP client
// Enables testing with mock HTTP clients
type HTTPClientProvider interface {
	Do(req *http.Request) (*http.Response, error)
}

// URLResolver turns a profile into the absolute base URL the query string is
// appended to. The result never carries a query or fragment.
type URLResolver interface {
	ResolveBase(ctx context.Context, profile config.Profile) (string, error)
}

// ResponseHandler writes a finished response for the CLI
type ResponseHandler interface {
	HandleResponse(w io.Writer, resp *Response) error
}

// FieldCatalog answers questions about the blog's documented query
// parameters. It is satisfied by *openapi.Catalog.
type FieldCatalog interface {
	UndeclaredFields(ctx context.Context, path, method string, names []string) ([]string, error)
	BaseURL(ctx context.Context) (string, error)
}
