// Package mcp exposes the blog's call sites as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/http"
	"github.com/recipeblog/recipeq/internal/logger"
	"github.com/recipeblog/recipeq/pkg/openapi"
	"github.com/rs/zerolog"
)

const (
	serverName    = "recipeq"
	serverVersion = "1.0.0"

	defaultContextLines = 5
)

// ParameterSource lists the documented query parameters of an operation.
// It is satisfied by *openapi.Catalog.
type ParameterSource interface {
	QueryParameters(ctx context.Context, path, method string) ([]openapi.QueryParameter, error)
}

// Server registers one tool per exposed profile plus build_url and discover
type Server struct {
	logger   zerolog.Logger
	config   *config.Config
	executor *http.Executor
	params   ParameterSource
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server backed by the blog configured in cfg
func NewServer(log zerolog.Logger, cfg *config.Config) *Server {
	factory := http.NewClientFactory(log)

	var catalog *openapi.Catalog
	if cfg.OpenAPIURL != "" {
		catalog = factory.CreateCatalog(cfg)
	}
	executor := factory.CreateExecutorWithCatalog(cfg, catalog)

	if catalog == nil {
		return NewServerWithExecutor(log, cfg, executor, nil)
	}
	return NewServerWithExecutor(log, cfg, executor, catalog)
}

// NewServerWithExecutor creates a server around an existing executor.
// params may be nil, in which case discover reports profiles only.
func NewServerWithExecutor(log zerolog.Logger, cfg *config.Config, executor *http.Executor, params ParameterSource) *Server {
	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if cfg.MCP.Description != "" {
		opts = append(opts, server.WithInstructions(cfg.MCP.Description))
	}

	s := &Server{
		logger:   logger.ForComponent(log, "mcp_server"),
		config:   cfg,
		executor: executor,
		params:   params,
		mcp:      server.NewMCPServer(serverName, serverVersion, opts...),
	}
	s.registerTools()
	return s
}

// Serve serves MCP over the given streams until ctx is cancelled or in closes
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Debug().Strs("profiles", s.profileNames()).Msg("MCP server started")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.ErrorTypeMCP, "MCP server failed")
	}
	return nil
}

// MCPServer returns the underlying protocol server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// profileNames returns the exposed profiles, sorted
func (s *Server) profileNames() []string {
	if len(s.config.MCP.AllowedProfiles) == 0 {
		return config.ProfileNames(s.config.Profiles)
	}
	names := append([]string(nil), s.config.MCP.AllowedProfiles...)
	sort.Strings(names)
	return names
}

func (s *Server) registerTools() {
	names := s.profileNames()

	for _, name := range names {
		profile := s.config.Profiles[name]
		s.mcp.AddTool(profileTool(profile), s.handleProfile(profile))
	}

	s.mcp.AddTool(mcp.NewTool("build_url",
		mcp.WithDescription("Build the URL a profile would request, without sending it. "+
			"Blank values are skipped and values are percent-encoded with spaces as %20."),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Enum(names...),
			mcp.Description("Profile to build for"),
		),
		mcp.WithObject("fields",
			mcp.Description("Field values keyed by field name. Each value is a string or an array of strings."),
		),
	), s.handleBuildURL)

	s.mcp.AddTool(mcp.NewTool("discover",
		mcp.WithDescription("List the available profiles, their endpoints and fields, "+
			"and the query parameters the blog's OpenAPI document declares for them."),
	), s.handleDiscover)
}

func profileTool(profile config.Profile) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(fmt.Sprintf("%s (%s %s). Supports optional response filtering via 'regex' "+
			"(text search with context) or 'jmespath' (JSON filtering).", profile.Description, profile.Method, profile.Path)),
	}
	for _, f := range profile.Fields {
		if f.Repeated {
			opts = append(opts, mcp.WithArray(f.Name, mcp.WithStringItems(), mcp.Description(f.Description)))
		} else {
			opts = append(opts, mcp.WithString(f.Name, mcp.Description(f.Description)))
		}
	}
	opts = append(opts,
		mcp.WithString("regex",
			mcp.Description("Regex pattern to search the response text (returns matches with surrounding context). Cannot be used with jmespath."),
		),
		mcp.WithString("jmespath",
			mcp.Description("JMESPath expression to filter a JSON response (https://jmespath.org). Cannot be used with regex."),
		),
		mcp.WithNumber("context_lines",
			mcp.Description("Amount of context around regex matches, ~80 characters per line."),
			mcp.DefaultNumber(defaultContextLines),
		),
	)
	return mcp.NewTool(profile.Name, opts...)
}

// fieldValues reads the profile's fields from the tool arguments. Absent
// fields are left out so the profile sees only what the caller supplied.
// Single fields take a string; repeated fields take a string or an array of
// strings. Anything else is rejected.
func fieldValues(profile config.Profile, args map[string]any) (map[string][]string, error) {
	values := make(map[string][]string)
	for _, f := range profile.Fields {
		raw, ok := args[f.Name]
		if !ok || raw == nil {
			continue
		}
		vals, err := stringValues(f.Name, raw, f.Repeated)
		if err != nil {
			return nil, err
		}
		values[f.Name] = vals
	}
	return values, nil
}

func stringValues(name string, raw any, allowArray bool) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []any:
		if !allowArray {
			return nil, fmt.Errorf("field %q must be a string", name)
		}
		vals := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %q item %d must be a string, got %T", name, i, item)
			}
			vals[i] = str
		}
		return vals, nil
	case []string:
		if !allowArray {
			return nil, fmt.Errorf("field %q must be a string", name)
		}
		return v, nil
	}
	if allowArray {
		return nil, fmt.Errorf("field %q must be a string or an array of strings, got %T", name, raw)
	}
	return nil, fmt.Errorf("field %q must be a string, got %T", name, raw)
}

func (s *Server) handleProfile(profile config.Profile) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := logger.ForMCP(s.logger, profile.Name)

		regexPattern := strings.TrimSpace(req.GetString("regex", ""))
		jmespathExpr := strings.TrimSpace(req.GetString("jmespath", ""))
		if regexPattern != "" && jmespathExpr != "" {
			return mcp.NewToolResultError("Cannot use both regex and jmespath filters simultaneously"), nil
		}

		values, err := fieldValues(profile, req.GetArguments())
		if err != nil {
			log.Warn().Err(err).Msg("tool arguments rejected")
			return mcp.NewToolResultError(err.Error()), nil
		}

		p, err := s.executor.Prepare(ctx, profile.Name, values)
		if err != nil {
			log.Warn().Err(err).Msg("tool arguments rejected")
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}

		// Each call gets its own dispatcher: concurrent tool calls are
		// independent and must not cancel one another.
		resp, err := s.executor.Fork().Fetch(ctx, p)
		if err != nil {
			log.Error().Err(err).Str("url", p.URL).Msg("HTTP request failed via MCP")
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}

		body := string(resp.Body)
		meta := map[string]any{
			"url":        p.URL,
			"status":     resp.StatusCode,
			"request_id": resp.RequestID,
		}

		var filtered *FilterResult
		switch {
		case regexPattern != "":
			contextLines := req.GetInt("context_lines", defaultContextLines)
			filtered, err = filterRegex(log, body, regexPattern, contextLines)
		case jmespathExpr != "":
			filtered, err = filterJMESPath(log, body, jmespathExpr)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if filtered != nil {
			body = filtered.Content
			for k, v := range filtered.Meta {
				meta[k] = v
			}
		}

		result := mcp.NewToolResultText(s.decorate(resp, body))
		result.Meta = mcp.NewMetaFromMap(meta)
		result.IsError = resp.StatusCode >= 400
		return result, nil
	}
}

// decorate prefixes the status line, and headers with --include, when the
// server runs verbose or the blog answered with an error.
func (s *Server) decorate(resp *http.Response, body string) string {
	if !s.config.Verbose && !s.config.IncludeHeaders && resp.StatusCode < 400 {
		return body
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTTP Status: %d\n", resp.StatusCode)
	if s.config.IncludeHeaders {
		b.WriteString("\nHeaders:\n")
		keys := make([]string, 0, len(resp.Header))
		for k := range resp.Header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range resp.Header[k] {
				fmt.Fprintf(&b, "%s: %s\n", k, v)
			}
		}
	}
	b.WriteString("\n")
	b.WriteString(body)
	return b.String()
}

func (s *Server) handleBuildURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("profile")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.exposed(name) {
		return mcp.NewToolResultError(fmt.Sprintf("profile %q is not available", name)), nil
	}

	values := make(map[string][]string)
	if raw, ok := req.GetArguments()["fields"]; ok && raw != nil {
		fields, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("fields must be an object, got %T", raw)), nil
		}
		for key, value := range fields {
			if value == nil {
				continue
			}
			vals, err := stringValues(key, value, true)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			values[key] = vals
		}
	}

	p, err := s.executor.Prepare(ctx, name, values)
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}
	return mcp.NewToolResultText(p.URL), nil
}

func (s *Server) handleDiscover(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, name := range s.profileNames() {
		profile := s.config.Profiles[name]
		fmt.Fprintf(&b, "%s: %s %s (%s)\n", profile.Name, profile.Method, profile.Path, profile.Mode)
		if profile.Description != "" {
			fmt.Fprintf(&b, "  %s\n", profile.Description)
		}
		for _, f := range profile.Fields {
			kind := "string"
			if f.Repeated {
				kind = "string[]"
			}
			fmt.Fprintf(&b, "  - %s (%s)\n", f.Name, kind)
		}

		if s.params == nil {
			continue
		}
		params, err := s.params.QueryParameters(ctx, profile.Path, profile.Method)
		if err != nil {
			s.logger.Warn().Err(err).Str("profile", name).Msg("could not read documented parameters")
			fmt.Fprintf(&b, "  documented: unavailable (%v)\n", err)
			continue
		}
		documented := make([]string, len(params))
		for i, p := range params {
			documented[i] = p.Name
			if p.Required {
				documented[i] += "*"
			}
		}
		fmt.Fprintf(&b, "  documented: %s\n", strings.Join(documented, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) exposed(name string) bool {
	for _, n := range s.profileNames() {
		if n == name {
			return true
		}
	}
	return false
}
