package http

import (
	"io"
	"net/http"
	"time"

	"github.com/recipeblog/recipeq/internal/errors"
)

// Response is a fully read HTTP response
type Response struct {
	RequestID  string
	Method     string
	URL        string
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Body       []byte

	// RequestHeader holds the headers that were sent, for verbose output
	RequestHeader http.Header
	Duration      time.Duration
}

// readResponse drains and closes resp
func readResponse(resp *http.Response, req *http.Request) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, "failed to read response body")
	}

	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}

	return &Response{
		Method:        req.Method,
		URL:           req.URL.String(),
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		Proto:         proto,
		Header:        resp.Header,
		Body:          body,
		RequestHeader: req.Header,
	}, nil
}
