package http

import (
	"context"
	"io"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/display"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/logger"
	"github.com/recipeblog/recipeq/pkg/query"
	"github.com/rs/zerolog"
)

// Prepared is a profile call whose URL has been built but not sent
type Prepared struct {
	Profile config.Profile
	Query   query.Request
	URL     string
}

// Executor turns profile field values into blog requests
type Executor struct {
	logger          zerolog.Logger
	config          *config.Config
	urlResolver     URLResolver
	requestBuilder  *RequestBuilder
	responseHandler ResponseHandler
	catalog         FieldCatalog
	dispatcher      *Dispatcher
}

// NewExecutorWithDependencies creates an Executor with injected dependencies.
// catalog may be nil.
func NewExecutorWithDependencies(
	logger zerolog.Logger,
	httpClient HTTPClientProvider,
	catalog FieldCatalog,
	urlResolver URLResolver,
	responseHandler ResponseHandler,
	cfg *config.Config,
) *Executor {
	return &Executor{
		logger:          logger,
		config:          cfg,
		urlResolver:     urlResolver,
		requestBuilder:  NewRequestBuilder(logger, cfg),
		responseHandler: responseHandler,
		catalog:         catalog,
		dispatcher:      NewDispatcher(logger, httpClient),
	}
}

// Prepare builds the URL for profileName from values (field name to
// submitted values). Unknown fields, malformed names and, when an OpenAPI
// document is configured, fields the document does not declare are
// rejected before anything is built.
func (e *Executor) Prepare(ctx context.Context, profileName string, values map[string][]string) (*Prepared, error) {
	profile, err := e.config.Profile(profileName)
	if err != nil {
		return nil, err
	}

	candidates, err := profile.Candidates(values)
	if err != nil {
		return nil, err
	}

	base, err := e.urlResolver.ResolveBase(ctx, profile)
	if err != nil {
		e.logger.Error().Err(err).Str("profile", profile.Name).Msg("failed to resolve base URL")
		return nil, err
	}

	req, err := query.NewRequest(base, candidates...)
	if err != nil {
		return nil, errors.FromQuery(err).WithContext("profile", profile.Name)
	}

	if err := e.checkDocumented(ctx, profile, req); err != nil {
		return nil, err
	}

	target := query.Build(req)
	e.logger.Debug().
		Str("profile", profile.Name).
		Str("target_url", target).
		Int("pairs", query.Pairs(req)).
		Msg("URL built")

	return &Prepared{Profile: profile, Query: req, URL: target}, nil
}

// checkDocumented rejects supplied fields the OpenAPI document does not
// declare. A document that cannot be loaded only produces a warning.
func (e *Executor) checkDocumented(ctx context.Context, profile config.Profile, req query.Request) error {
	if e.catalog == nil {
		return nil
	}

	var names []string
	for _, f := range req.Fields {
		if f.Supplied() {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	undeclared, err := e.catalog.UndeclaredFields(ctx, profile.Path, profile.Method, names)
	if err != nil {
		e.logger.Warn().Err(err).Str("profile", profile.Name).Msg("could not check fields against OpenAPI document")
		return nil
	}
	if len(undeclared) > 0 {
		return errors.New(errors.ErrorTypeValidation, "field not documented by the OpenAPI document").
			WithContext("field", undeclared[0]).
			WithContext("profile", profile.Name).
			WithContext("path", profile.Path)
	}
	return nil
}

// Send submits p without waiting. A newer Send cancels this one.
func (e *Executor) Send(ctx context.Context, p *Prepared) (<-chan Result, error) {
	method := p.Profile.Method
	if method == "" {
		method = "GET"
	}

	req, err := e.requestBuilder.Build(ctx, method, p.URL)
	if err != nil {
		return nil, err
	}

	reqLogger := logger.ForRequest(e.logger, p.Profile.Name, p.URL)
	reqLogger.Debug().Msg("sending request")
	return e.dispatcher.Submit(ctx, req), nil
}

// Fetch sends p and waits for its result, bounded by the configured timeout.
func (e *Executor) Fetch(ctx context.Context, p *Prepared) (*Response, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	results, err := e.Send(ctx, p)
	if err != nil {
		return nil, err
	}

	result := <-results
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Response, nil
}

// Execute prepares and fetches profileName, writing the response to w.
// Explain prefixes a breakdown of the query; NoSend writes the URL instead
// of sending it.
func (e *Executor) Execute(ctx context.Context, w io.Writer, profileName string, values map[string][]string) error {
	p, err := e.Prepare(ctx, profileName, values)
	if err != nil {
		return err
	}

	if e.config.Explain {
		if _, err := io.WriteString(w, display.RenderExplain(p.Profile, p.Query, p.URL)); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write explanation")
		}
	}

	if e.config.NoSend {
		_, err := io.WriteString(w, p.URL+"\n")
		return err
	}

	resp, err := e.Fetch(ctx, p)
	if err != nil {
		return err
	}
	return e.responseHandler.HandleResponse(w, resp)
}

// Fork returns an executor sharing e's configuration but with its own
// dispatcher, so its requests neither supersede nor are superseded by e's.
func (e *Executor) Fork() *Executor {
	forked := *e
	forked.dispatcher = NewDispatcher(e.logger, e.dispatcher.client)
	return &forked
}
