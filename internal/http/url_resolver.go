package http

import (
	"context"
	"net/url"
	"strings"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/errors"
)

// urlResolver implements URLResolver interface
type urlResolver struct {
	config  *config.Config
	catalog FieldCatalog
}

// NewURLResolver creates a new URL resolver. catalog may be nil.
func NewURLResolver(config *config.Config, catalog FieldCatalog) URLResolver {
	return &urlResolver{
		config:  config,
		catalog: catalog,
	}
}

// ResolveBase joins the server URL with the profile path. The server comes
// from --server, falling back to the first server of the OpenAPI document.
// A profile scheme replaces http(s) but never lambda.
func (r *urlResolver) ResolveBase(ctx context.Context, profile config.Profile) (string, error) {
	server := r.config.Server
	if server == "" {
		if r.catalog == nil {
			return "", errors.New(errors.ErrorTypeConfig, "no server URL available").
				WithContext("profile", profile.Name).
				WithContext("suggestion", "use --server flag or provide OpenAPI URL")
		}
		var err error
		server, err = r.catalog.BaseURL(ctx)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeOpenAPI, "failed to get base URL from OpenAPI document")
		}
	}

	base, err := url.Parse(server)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeValidation, "invalid base URL").
			WithContext("base_url", server)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", errors.New(errors.ErrorTypeValidation, "server URL must be complete (e.g., http://localhost:8000)").
			WithContext("server_url", server)
	}

	if profile.Scheme != "" && base.Scheme != "lambda" {
		base.Scheme = profile.Scheme
	}

	path := profile.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if base.Path != "" && base.Path != "/" {
		base.Path = strings.TrimSuffix(base.Path, "/") + path
	} else {
		base.Path = path
	}
	base.RawPath = ""
	base.RawQuery = ""
	base.ForceQuery = false
	base.Fragment = ""

	return base.String(), nil
}
