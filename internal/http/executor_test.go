package http

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/testutil"
	"github.com/rs/zerolog"
)

func newTestExecutor(cfg *config.Config, client HTTPClientProvider, catalog FieldCatalog) *Executor {
	return NewClientFactory(zerolog.Nop()).CreateExecutorWithCustomClient(cfg, client, catalog)
}

func TestExecutor_Prepare(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		values   map[string][]string
		expected string
	}{
		{
			name:     "title only",
			profile:  "search",
			values:   map[string][]string{"title": {"Pasta Night"}},
			expected: "http://localhost:8000/blog?title=Pasta%20Night",
		},
		{
			name:    "title and ingredients",
			profile: "search",
			values: map[string][]string{
				"title":      {"Soup"},
				"ingredient": {"egg", "flour"},
			},
			expected: "http://localhost:8000/blog?title=Soup&ingredient=egg&ingredient=flour",
		},
		{
			name:     "blank title skipped",
			profile:  "search",
			values:   map[string][]string{"title": {"   "}, "ingredient": {"egg"}},
			expected: "http://localhost:8000/blog?ingredient=egg",
		},
		{
			name:     "nothing supplied",
			profile:  "search",
			values:   nil,
			expected: "http://localhost:8000/blog",
		},
		{
			name:     "retrieve prefers title",
			profile:  "retrieve",
			values:   map[string][]string{"title": {"Soup"}, "ingredient": {"egg"}},
			expected: "https://localhost:8000/blog?title=Soup",
		},
		{
			name:     "retrieve falls back to ingredients",
			profile:  "retrieve",
			values:   map[string][]string{"title": {""}, "ingredient": {"egg", "milk"}},
			expected: "https://localhost:8000/blog?ingredient=egg&ingredient=milk",
		},
		{
			name:     "cart",
			profile:  "cart",
			values:   map[string][]string{"id": {"42"}},
			expected: "http://localhost:8000/grocerylist/update?id=42",
		},
		{
			name:     "reserved characters escaped",
			profile:  "search",
			values:   map[string][]string{"title": {"Mac & Cheese?"}},
			expected: "http://localhost:8000/blog?title=Mac%20%26%20Cheese%3F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
			exec := newTestExecutor(cfg, testutil.NewMockHTTPClient("", 200, nil, nil), nil)

			p, err := exec.Prepare(context.Background(), tt.profile, tt.values)
			testutil.AssertNoError(t, err, "Prepare")
			testutil.AssertStringEqual(t, p.URL, tt.expected, "URL")
			testutil.AssertStringEqual(t, p.Profile.Name, tt.profile, "profile")
		})
	}
}

func TestExecutor_PrepareErrors(t *testing.T) {
	tests := []struct {
		name      string
		profile   string
		values    map[string][]string
		catalog   FieldCatalog
		errorType errors.ErrorType
		contains  string
	}{
		{
			name:      "unknown profile",
			profile:   "delete",
			errorType: errors.ErrorTypeConfig,
		},
		{
			name:      "field not in profile",
			profile:   "search",
			values:    map[string][]string{"author": {"me"}},
			errorType: errors.ErrorTypeValidation,
			contains:  "field not accepted",
		},
		{
			name:      "two ids for cart",
			profile:   "cart",
			values:    map[string][]string{"id": {"1", "2"}},
			errorType: errors.ErrorTypeValidation,
			contains:  "single value",
		},
		{
			name:    "field the document does not declare",
			profile: "search",
			values:  map[string][]string{"title": {"Soup"}},
			catalog: &testutil.MockCatalog{Declared: map[string][]string{
				"/blog": {"ingredient"},
			}},
			errorType: errors.ErrorTypeValidation,
			contains:  "not documented",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
			exec := newTestExecutor(cfg, testutil.NewMockHTTPClient("", 200, nil, nil), tt.catalog)

			_, err := exec.Prepare(context.Background(), tt.profile, tt.values)
			testutil.AssertError(t, err, "Prepare")
			testutil.AssertEqual(t, errors.GetType(err), tt.errorType, "error type")
			if tt.contains != "" {
				testutil.AssertErrorContains(t, err, tt.contains, "Prepare")
			}
		})
	}
}

func TestExecutor_PrepareCatalogUnavailable(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	catalog := &testutil.MockCatalog{Err: testutil.NewMockError("unreachable")}
	exec := newTestExecutor(cfg, testutil.NewMockHTTPClient("", 200, nil, nil), catalog)

	p, err := exec.Prepare(context.Background(), "search", map[string][]string{"title": {"Soup"}})
	testutil.AssertNoError(t, err, "Prepare should only warn when the document is unavailable")
	testutil.AssertStringEqual(t, p.URL, "http://localhost:8000/blog?title=Soup", "URL")
	testutil.AssertSliceEqual(t, catalog.LookupPath, []string{"/blog"}, "catalog consulted")
}

func TestExecutor_ExecuteAgainstServer(t *testing.T) {
	server := testutil.NewRecipeTestServer()
	defer server.Close()

	cfg := testutil.BlogConfig(server.URL)
	exec := newTestExecutor(cfg, server.Client(), nil)
	ctx := context.Background()

	var out bytes.Buffer
	err := exec.Execute(ctx, &out, "search", map[string][]string{
		"title":      {"Pasta Night"},
		"ingredient": {"egg", " ", "flour"},
	})
	testutil.AssertNoError(t, err, "Execute search")
	testutil.AssertStringEqual(t, out.String(), "search: title=Pasta%20Night&ingredient=egg&ingredient=flour", "search output")

	out.Reset()
	err = exec.Execute(ctx, &out, "cart", map[string][]string{"id": {"7"}})
	testutil.AssertNoError(t, err, "Execute cart")
	testutil.AssertStringEqual(t, out.String(), "<h1>Shopping Cart Updated</h1>", "cart output")

	testutil.AssertSliceEqual(t, server.Queries(), []string{
		"title=Pasta%20Night&ingredient=egg&ingredient=flour",
		"id=7",
	}, "queries received")
}

func TestExecutor_CartWithoutSession(t *testing.T) {
	server := testutil.NewRecipeTestServer()
	defer server.Close()

	cfg := testutil.NewConfigBuilder().WithServer(server.URL).Build()
	exec := newTestExecutor(cfg, server.Client(), nil)

	p, err := exec.Prepare(context.Background(), "cart", map[string][]string{"id": {"7"}})
	testutil.AssertNoError(t, err, "Prepare")

	resp, err := exec.Fetch(context.Background(), p)
	testutil.AssertNoError(t, err, "Fetch")
	testutil.AssertEqual(t, resp.StatusCode, 401, "status without session")
}

func TestExecutor_NoSend(t *testing.T) {
	mock := testutil.NewMockHTTPClient("", 200, nil, nil)
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").WithNoSend().Build()
	exec := newTestExecutor(cfg, mock, nil)

	var out bytes.Buffer
	err := exec.Execute(context.Background(), &out, "cart", map[string][]string{"id": {"42"}})
	testutil.AssertNoError(t, err, "Execute")
	testutil.AssertStringEqual(t, out.String(), "http://localhost:8000/grocerylist/update?id=42\n", "output")
	testutil.AssertEqual(t, len(mock.Requests), 0, "requests sent")
}

func TestExecutor_Explain(t *testing.T) {
	mock := testutil.NewMockHTTPClient("", 200, nil, nil)
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").WithExplain().WithNoSend().Build()
	exec := newTestExecutor(cfg, mock, nil)

	var out bytes.Buffer
	err := exec.Execute(context.Background(), &out, "search", map[string][]string{"title": {"Pasta Night"}})
	testutil.AssertNoError(t, err, "Execute")
	testutil.AssertStringContains(t, out.String(), "?title=Pasta%20Night", "explanation")
	testutil.AssertStringContains(t, out.String(), "(not supplied)", "ingredient not supplied")
}

func TestExecutor_NetworkError(t *testing.T) {
	mock := testutil.NewMockHTTPClient("", 0, nil, testutil.NewMockError("connection refused"))
	cfg := testutil.NewConfigBuilder().WithServer("http://localhost:8000").Build()
	exec := newTestExecutor(cfg, mock, nil)

	var out bytes.Buffer
	err := exec.Execute(context.Background(), &out, "search", map[string][]string{"title": {"Soup"}})
	testutil.AssertErrorContains(t, err, "connection refused", "Execute")
	testutil.AssertEqual(t, errors.GetType(err), errors.ErrorTypeNetwork, "error type")
}

func TestExecutor_Fork(t *testing.T) {
	release := make(chan struct{})
	server, started := testutil.NewBlockingTestServer(release)
	defer server.Close()

	cfg := testutil.NewConfigBuilder().WithServer(server.URL).Build()
	executor := newTestExecutor(cfg, server.Client(), nil)
	ctx := context.Background()

	soup, err := executor.Prepare(ctx, "search", map[string][]string{"title": {"Soup"}})
	testutil.AssertNoError(t, err, "Prepare soup")
	stew, err := executor.Prepare(ctx, "search", map[string][]string{"title": {"Stew"}})
	testutil.AssertNoError(t, err, "Prepare stew")

	first, err := executor.Fork().Send(ctx, soup)
	testutil.AssertNoError(t, err, "Send on first fork")
	<-started
	second, err := executor.Fork().Send(ctx, stew)
	testutil.AssertNoError(t, err, "Send on second fork")
	<-started

	close(release)
	for _, results := range []<-chan Result{first, second} {
		r := receive(t, results)
		testutil.AssertNoError(t, r.Err, "forked request")
	}
}

func TestExecutor_Timeout(t *testing.T) {
	release := make(chan struct{})
	server, _ := testutil.NewBlockingTestServer(release)
	defer server.Close()
	defer close(release)

	cfg := testutil.NewConfigBuilder().WithServer(server.URL).WithTimeout(50 * time.Millisecond).Build()
	executor := newTestExecutor(cfg, server.Client(), nil)
	ctx := context.Background()

	p, err := executor.Prepare(ctx, "search", map[string][]string{"title": {"Soup"}})
	testutil.AssertNoError(t, err, "Prepare")

	_, err = executor.Fetch(ctx, p)
	testutil.AssertError(t, err, "Fetch past the timeout")
	testutil.AssertEqual(t, errors.GetType(err), errors.ErrorTypeNetwork, "error type")
}
