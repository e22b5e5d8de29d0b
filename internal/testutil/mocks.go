package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockHTTPClient records requests and answers each with a fresh copy of the
// configured response.
type MockHTTPClient struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Error      error

	mu       sync.Mutex
	Requests []*http.Request
}

// Do implements the HTTPClientProvider interface
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Error != nil {
		return nil, m.Error
	}

	resp := &http.Response{
		StatusCode: m.StatusCode,
		Status:     http.StatusText(m.StatusCode),
		Proto:      "HTTP/1.1",
		Body:       io.NopCloser(strings.NewReader(m.Body)),
		Header:     make(http.Header),
		Request:    req,
	}
	for key, value := range m.Headers {
		resp.Header.Set(key, value)
	}
	return resp, nil
}

// LastRequest returns the most recent request, or nil
func (m *MockHTTPClient) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// NewMockHTTPClient creates a mock HTTP client with the given response and error
func NewMockHTTPClient(body string, statusCode int, headers map[string]string, err error) *MockHTTPClient {
	return &MockHTTPClient{
		StatusCode: statusCode,
		Body:       body,
		Headers:    headers,
		Error:      err,
	}
}

// MockCatalog stands in for an OpenAPI catalog
type MockCatalog struct {
	Declared   map[string][]string // path to declared query names
	Base       string
	Err        error
	LookupPath []string
}

func (m *MockCatalog) UndeclaredFields(ctx context.Context, path, method string, names []string) ([]string, error) {
	m.LookupPath = append(m.LookupPath, path)
	if m.Err != nil {
		return nil, m.Err
	}
	declared := map[string]bool{}
	for _, n := range m.Declared[path] {
		declared[n] = true
	}
	var undeclared []string
	for _, n := range names {
		if !declared[n] {
			undeclared = append(undeclared, n)
		}
	}
	return undeclared, nil
}

func (m *MockCatalog) BaseURL(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Base, nil
}

// MockError provides a simple error implementation for testing
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}

func NewMockError(message string) *MockError {
	return &MockError{Message: message}
}
