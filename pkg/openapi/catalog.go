package openapi

import (
	"context"
	"fmt"
	"sync"
)

// Catalog lazily loads an OpenAPI document from specURL on first use.
type Catalog struct {
	mu      sync.Mutex
	parser  *Parser
	specURL string
}

func NewCatalog(client HTTPClient, specURL string) *Catalog {
	return &Catalog{
		parser:  NewParserWithClient(client),
		specURL: specURL,
	}
}

// NewCatalogFromBytes builds a Catalog from an already loaded document
func NewCatalogFromBytes(data []byte) (*Catalog, error) {
	parser := NewParser()
	if err := parser.LoadFromBytes(data); err != nil {
		return nil, err
	}
	return &Catalog{parser: parser}, nil
}

func (c *Catalog) ensureLoaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.parser.Loaded() {
		return nil
	}
	if c.specURL == "" {
		return fmt.Errorf("no OpenAPI document configured")
	}
	if err := c.parser.LoadFromURL(ctx, c.specURL); err != nil {
		return fmt.Errorf("loading OpenAPI document: %w", err)
	}
	return nil
}

// QueryParameters returns the query parameters declared for path and method
func (c *Catalog) QueryParameters(ctx context.Context, path, method string) ([]QueryParameter, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.parser.QueryParameters(path, method)
}

// ParamCompletions returns the query parameter names for shell completion
func (c *Catalog) ParamCompletions(ctx context.Context, path, method string) ([]string, error) {
	params, err := c.QueryParameters(ctx, path, method)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names, nil
}

// UndeclaredFields returns the names the document does not declare as query
// parameters of path and method, preserving input order. An operation the
// document does not describe at all is reported as an error.
func (c *Catalog) UndeclaredFields(ctx context.Context, path, method string, names []string) ([]string, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	ops, err := c.parser.GetPaths(path, method)
	if err != nil {
		return nil, err
	}
	found := false
	for _, op := range ops {
		if op.Path == path {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("operation %s %s not described by the OpenAPI document", method, path)
	}

	params, err := c.parser.QueryParameters(path, method)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p.Name] = true
	}

	var undeclared []string
	for _, name := range names {
		if !declared[name] {
			undeclared = append(undeclared, name)
		}
	}
	return undeclared, nil
}

// BaseURL returns the first server URL of the document
func (c *Catalog) BaseURL(ctx context.Context) (string, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return "", err
	}
	servers, err := c.parser.GetServers()
	if err != nil {
		return "", err
	}
	if len(servers) == 0 || servers[0].URL == "" {
		return "", fmt.Errorf("OpenAPI document declares no servers")
	}
	return servers[0].URL, nil
}
