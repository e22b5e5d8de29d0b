package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/http"
	"github.com/recipeblog/recipeq/internal/testutil"
	"github.com/recipeblog/recipeq/pkg/openapi"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, cfg *config.Config, client http.HTTPClientProvider, params ParameterSource) *Server {
	t.Helper()
	exec := http.NewClientFactory(zerolog.Nop()).CreateExecutorWithCustomClient(cfg, client, nil)
	return NewServerWithExecutor(zerolog.Nop(), cfg, exec, params)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(result.Content))
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is %T, want text", result.Content[0])
	}
	return text.Text
}

func TestServer_Tools(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	s := newTestServer(t, cfg, testutil.NewMockHTTPClient("", 200, nil, nil), nil)

	tools := s.MCPServer().ListTools()
	for _, name := range []string{"search", "retrieve", "cart", "build_url", "discover"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}

	search := tools["search"].Tool
	if _, ok := search.InputSchema.Properties["ingredient"]; !ok {
		t.Error("search tool should accept ingredient")
	}
	if _, ok := search.InputSchema.Properties["jmespath"]; !ok {
		t.Error("search tool should accept jmespath")
	}
}

func TestServer_AllowedProfiles(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").WithMCPProfiles("search").Build()
	s := newTestServer(t, cfg, testutil.NewMockHTTPClient("", 200, nil, nil), nil)

	tools := s.MCPServer().ListTools()
	if _, ok := tools["cart"]; ok {
		t.Error("cart should not be exposed")
	}
	if _, ok := tools["search"]; !ok {
		t.Error("search should be exposed")
	}

	result, err := s.handleBuildURL(context.Background(), callRequest("build_url", map[string]any{"profile": "cart"}))
	testutil.AssertNoError(t, err, "handleBuildURL")
	if !result.IsError {
		t.Error("build_url for a hidden profile should fail")
	}
}

func TestServer_SearchTool(t *testing.T) {
	blog := testutil.NewRecipeTestServer()
	defer blog.Close()

	cfg := testutil.BlogConfig(blog.URL)
	s := newTestServer(t, cfg, blog.Client(), nil)
	profile := cfg.Profiles["search"]

	result, err := s.handleProfile(profile)(context.Background(), callRequest("search", map[string]any{
		"title":      "Pasta Night",
		"ingredient": []any{"egg", "", "flour"},
	}))
	testutil.AssertNoError(t, err, "search tool")
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	testutil.AssertStringEqual(t, resultText(t, result), "search: title=Pasta%20Night&ingredient=egg&ingredient=flour", "body")

	if result.Meta == nil || result.Meta.AdditionalFields["url"] != blog.URL+"/blog?title=Pasta%20Night&ingredient=egg&ingredient=flour" {
		t.Errorf("meta = %+v", result.Meta)
	}
}

func TestServer_CartToolWithoutSession(t *testing.T) {
	blog := testutil.NewRecipeTestServer()
	defer blog.Close()

	cfg := testutil.NewConfigBuilder().WithServer(blog.URL).Build()
	s := newTestServer(t, cfg, blog.Client(), nil)

	result, err := s.handleProfile(cfg.Profiles["cart"])(context.Background(), callRequest("cart", map[string]any{"id": "3"}))
	testutil.AssertNoError(t, err, "cart tool")
	if !result.IsError {
		t.Error("a 401 from the blog should be reported as a tool error")
	}
	testutil.AssertStringContains(t, resultText(t, result), "HTTP Status: 401", "status prefix")
}

func TestServer_ToolRejectsBadArguments(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	mock := testutil.NewMockHTTPClient("", 200, nil, nil)
	s := newTestServer(t, cfg, mock, nil)
	search := s.handleProfile(cfg.Profiles["search"])

	result, _ := search(context.Background(), callRequest("search", map[string]any{
		"title": "Soup", "regex": "a", "jmespath": "b",
	}))
	if !result.IsError {
		t.Error("regex and jmespath together should be rejected")
	}

	cart := s.handleProfile(cfg.Profiles["cart"])
	result, _ = cart(context.Background(), callRequest("cart", map[string]any{"id": "1"}))
	if result.IsError {
		t.Errorf("cart with id should succeed: %s", resultText(t, result))
	}
	testutil.AssertEqual(t, len(mock.Requests), 1, "only the valid call is sent")
}

func TestServer_Filters(t *testing.T) {
	body := `{"recipes":[{"title":"Soup","id":1},{"title":"Stew","id":2}]}`
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	s := newTestServer(t, cfg, testutil.NewMockHTTPClient(body, 200, map[string]string{"Content-Type": "application/json"}, nil), nil)
	search := s.handleProfile(cfg.Profiles["search"])

	result, err := search(context.Background(), callRequest("search", map[string]any{
		"title":    "S",
		"jmespath": "recipes[].title",
	}))
	testutil.AssertNoError(t, err, "jmespath search")
	testutil.AssertStringEqual(t, resultText(t, result), "[\n  \"Soup\",\n  \"Stew\"\n]", "jmespath output")

	result, err = search(context.Background(), callRequest("search", map[string]any{
		"title": "S",
		"regex": "Stew",
	}))
	testutil.AssertNoError(t, err, "regex search")
	testutil.AssertStringContains(t, resultText(t, result), "=== Context Window 1", "regex output")
	if result.Meta.AdditionalFields["filter"] == nil {
		t.Error("filter metadata missing")
	}

	result, _ = search(context.Background(), callRequest("search", map[string]any{
		"title": "S",
		"regex": "(",
	}))
	if !result.IsError {
		t.Error("invalid regex should be a tool error")
	}
}

func TestServer_BuildURL(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	mock := testutil.NewMockHTTPClient("", 200, nil, nil)
	s := newTestServer(t, cfg, mock, nil)

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr bool
	}{
		{
			name: "search",
			args: map[string]any{"profile": "search", "fields": map[string]any{
				"title":      "Pasta Night",
				"ingredient": []any{"egg"},
			}},
			want: "http://localhost:8000/blog?title=Pasta%20Night&ingredient=egg",
		},
		{
			name: "cart",
			args: map[string]any{"profile": "cart", "fields": map[string]any{"id": "9"}},
			want: "http://localhost:8000/grocerylist/update?id=9",
		},
		{
			name: "no fields",
			args: map[string]any{"profile": "search"},
			want: "http://localhost:8000/blog",
		},
		{
			name:    "missing profile",
			args:    map[string]any{},
			wantErr: true,
		},
		{
			name:    "unknown field",
			args:    map[string]any{"profile": "cart", "fields": map[string]any{"qty": "2"}},
			wantErr: true,
		},
		{
			name:    "non-string field",
			args:    map[string]any{"profile": "cart", "fields": map[string]any{"id": 9.0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleBuildURL(context.Background(), callRequest("build_url", tt.args))
			testutil.AssertNoError(t, err, "handleBuildURL")
			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantErr, resultText(t, result))
			}
			if !tt.wantErr {
				testutil.AssertStringEqual(t, resultText(t, result), tt.want, "URL")
			}
		})
	}

	testutil.AssertEqual(t, len(mock.Requests), 0, "build_url never sends")
}

type stubParams struct {
	params []openapi.QueryParameter
	err    error
}

func (s stubParams) QueryParameters(ctx context.Context, path, method string) ([]openapi.QueryParameter, error) {
	return s.params, s.err
}

func TestServer_Discover(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").WithMCPProfiles("cart").Build()

	s := newTestServer(t, cfg, testutil.NewMockHTTPClient("", 200, nil, nil),
		stubParams{params: []openapi.QueryParameter{{Name: "id", Required: true}}})
	result, err := s.handleDiscover(context.Background(), callRequest("discover", nil))
	testutil.AssertNoError(t, err, "discover")
	text := resultText(t, result)
	testutil.AssertStringContains(t, text, "cart: GET /grocerylist/update (all)", "profile line")
	testutil.AssertStringContains(t, text, "documented: id*", "documented params")
	if strings.Contains(text, "search:") {
		t.Error("discover should list exposed profiles only")
	}

	s = newTestServer(t, cfg, testutil.NewMockHTTPClient("", 200, nil, nil), stubParams{err: errors.New("offline")})
	result, _ = s.handleDiscover(context.Background(), callRequest("discover", nil))
	testutil.AssertStringContains(t, resultText(t, result), "documented: unavailable (offline)", "unavailable document")
}

func TestServer_Protocol(t *testing.T) {
	cfg := testutil.NewConfigBuilder().
		WithServer("http://localhost:8000").
		WithMCPDescription("Recipes from the family blog").
		Build()
	s := newTestServer(t, cfg, testutil.NewMockHTTPClient("", 200, nil, nil), nil)
	ctx := context.Background()

	initialize := s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize",`+
		`"params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`))
	raw, err := json.Marshal(initialize)
	testutil.AssertNoError(t, err, "marshal initialize response")
	testutil.AssertStringContains(t, string(raw), `"instructions":"Recipes from the family blog"`, "instructions")
	testutil.AssertStringContains(t, string(raw), `"name":"recipeq"`, "server name")

	list := s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	raw, err = json.Marshal(list)
	testutil.AssertNoError(t, err, "marshal tools/list response")
	for _, name := range []string{"search", "retrieve", "cart", "build_url", "discover"} {
		testutil.AssertStringContains(t, string(raw), `"name":"`+name+`"`, "tool listed")
	}
}

func TestServer_RejectsNonStringArguments(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	mock := testutil.NewMockHTTPClient("", 200, nil, nil)
	s := newTestServer(t, cfg, mock, nil)
	search := s.handleProfile(cfg.Profiles["search"])

	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{name: "number title", args: map[string]any{"title": 42.0}, field: `"title"`},
		{name: "number in ingredients", args: map[string]any{"title": "Soup", "ingredient": []any{7.0, "egg"}}, field: `"ingredient" item 0`},
		{name: "array title", args: map[string]any{"title": []any{"Soup"}}, field: `"title"`},
		{name: "object ingredient", args: map[string]any{"ingredient": map[string]any{"a": "egg"}}, field: `"ingredient"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search(context.Background(), callRequest("search", tt.args))
			testutil.AssertNoError(t, err, "search tool")
			if !result.IsError {
				t.Fatalf("expected a tool error, got %q", resultText(t, result))
			}
			testutil.AssertStringContains(t, resultText(t, result), tt.field, "error names the field")
		})
	}

	testutil.AssertEqual(t, len(mock.Requests), 0, "rejected calls are never sent")
}

func TestServer_BuildURLRejectsNonStringItems(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	s := newTestServer(t, cfg, testutil.NewMockHTTPClient("", 200, nil, nil), nil)

	for name, args := range map[string]map[string]any{
		"mixed array":    {"profile": "search", "fields": map[string]any{"ingredient": []any{1.0, "egg", true}}},
		"fields string":  {"profile": "search", "fields": "title=Soup"},
		"boolean scalar": {"profile": "search", "fields": map[string]any{"title": true}},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := s.handleBuildURL(context.Background(), callRequest("build_url", args))
			testutil.AssertNoError(t, err, "handleBuildURL")
			if !result.IsError {
				t.Errorf("expected a tool error, got %q", resultText(t, result))
			}
		})
	}
}
