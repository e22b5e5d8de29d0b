package http

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/rs/zerolog"
)

// responseHandler implements ResponseHandler interface
type responseHandler struct {
	logger zerolog.Logger
	config *config.Config
	stderr io.Writer
}

// NewResponseHandler creates a new response handler that writes verbose
// details to stderr
func NewResponseHandler(logger zerolog.Logger, config *config.Config) ResponseHandler {
	return NewResponseHandlerWithStderr(logger, config, os.Stderr)
}

func NewResponseHandlerWithStderr(logger zerolog.Logger, config *config.Config, stderr io.Writer) ResponseHandler {
	return &responseHandler{
		logger: logger.With().Str("component", "response_handler").Logger(),
		config: config,
		stderr: stderr,
	}
}

// HandleResponse writes the body to w, preceded by headers with --include.
// --verbose writes curl-style request and response details to stderr instead.
func (h *responseHandler) HandleResponse(w io.Writer, resp *Response) error {
	if h.config.Verbose {
		h.showRequestDetails(resp)
		h.showResponseDetails(resp)
	} else if h.config.IncludeHeaders {
		if err := h.showResponseHeaders(w, resp); err != nil {
			return err
		}
	}

	if _, err := w.Write(resp.Body); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write response body")
	}

	h.logger.Debug().
		Int("status", resp.StatusCode).
		Int("body_length", len(resp.Body)).
		Bool("verbose", h.config.Verbose).
		Bool("include_headers", h.config.IncludeHeaders).
		Msg("response displayed")

	return nil
}

func (h *responseHandler) showRequestDetails(resp *Response) {
	fmt.Fprintf(h.stderr, "> %s %s\n", resp.Method, resp.URL)
	if parsedURL, err := url.Parse(resp.URL); err == nil {
		fmt.Fprintf(h.stderr, "> Host: %s\n", parsedURL.Host)
	}
	for _, key := range sortedKeys(resp.RequestHeader) {
		for _, value := range resp.RequestHeader[key] {
			fmt.Fprintf(h.stderr, "> %s: %s\n", key, value)
		}
	}
	fmt.Fprintf(h.stderr, ">\n")
}

func (h *responseHandler) showResponseDetails(resp *Response) {
	fmt.Fprintf(h.stderr, "< %s %s\n", resp.Proto, resp.Status)
	for _, key := range sortedKeys(resp.Header) {
		for _, value := range resp.Header[key] {
			fmt.Fprintf(h.stderr, "< %s: %s\n", key, value)
		}
	}
	fmt.Fprintf(h.stderr, "<\n")
}

func (h *responseHandler) showResponseHeaders(w io.Writer, resp *Response) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", resp.Proto, resp.Status); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write response headers")
	}
	for _, key := range sortedKeys(resp.Header) {
		for _, value := range resp.Header[key] {
			fmt.Fprintf(w, "%s: %s\n", key, value)
		}
	}
	fmt.Fprintln(w)
	return nil
}

func sortedKeys(h map[string][]string) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
