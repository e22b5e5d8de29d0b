package http

import (
	"net/http"
	"testing"

	"github.com/recipeblog/recipeq/internal/testutil"
	"github.com/rs/zerolog"
)

func TestAuthenticatedHTTPClient_Do(t *testing.T) {
	mock := testutil.NewMockHTTPClient(testutil.BlogOpenAPISpec, 200, nil, nil)
	cfg := testutil.NewConfigBuilder().
		WithBearer("docs-token").
		WithHeaders("X-Api-Key: k").
		WithSession("abc").
		Build()
	client := NewAuthenticatedHTTPClientWith(mock, cfg, zerolog.Nop())

	req, _ := http.NewRequest(http.MethodGet, "http://localhost:8000/openapi.yaml", nil)
	resp, err := client.Do(req)
	testutil.AssertNoError(t, err, "Do")
	resp.Body.Close()

	sent := mock.LastRequest()
	testutil.AssertHeaderSet(t, sent, "Authorization", "Bearer docs-token", "bearer")
	testutil.AssertHeaderSet(t, sent, "X-Api-Key", "k", "custom header")
	if len(sent.Cookies()) != 0 {
		t.Errorf("session cookie should not be sent with the document request: %v", sent.Cookies())
	}
}

func TestAuthenticatedHTTPClient_Error(t *testing.T) {
	mock := testutil.NewMockHTTPClient("", 0, nil, testutil.NewMockError("dial failed"))
	client := NewAuthenticatedHTTPClientWith(mock, testutil.NewConfigBuilder().Build(), zerolog.Nop())

	req, _ := http.NewRequest(http.MethodGet, "http://localhost:8000/openapi.yaml", nil)
	_, err := client.Do(req)
	testutil.AssertErrorContains(t, err, "dial failed", "Do")
}
