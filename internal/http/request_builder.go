package http

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	internalconfig "github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/rs/zerolog"
)

const userAgent = "recipeq"

// emptyPayloadHash is the SHA-256 of an empty body; every blog call is a GET.
var emptyPayloadHash = fmt.Sprintf("%x", sha256.Sum256(nil))

// RequestBuilder builds HTTP requests with authentication and headers
type RequestBuilder struct {
	logger zerolog.Logger
	config *internalconfig.Config
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder(logger zerolog.Logger, cfg *internalconfig.Config) *RequestBuilder {
	return &RequestBuilder{
		logger: logger.With().Str("component", "request_builder").Logger(),
		config: cfg,
	}
}

// Build creates a bodiless request for targetURL carrying the session
// cookie, credentials and any -H headers.
func (b *RequestBuilder) Build(ctx context.Context, method, targetURL string) (*http.Request, error) {
	logger := b.logger.With().
		Str("method", method).
		Str("target_url", targetURL).
		Logger()

	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to create HTTP request").
			WithContext("method", method).
			WithContext("url", targetURL)
	}

	req.Header.Set("User-Agent", userAgent)

	if b.config.Session != "" {
		req.AddCookie(&http.Cookie{Name: internalconfig.SessionCookie, Value: b.config.Session})
		logger.Debug().Msg("session cookie added")
	}
	b.applyHeaders(req)

	// Signing goes last so the signature covers the final headers
	if err := b.applyAuthentication(ctx, req); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeAuth, "failed to apply authentication")
	}

	return req, nil
}

// applyHeaders sets the bearer token and the -H headers, which override
// anything set before them
func (b *RequestBuilder) applyHeaders(req *http.Request) {
	if b.config.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+b.config.Bearer)
	}

	headerCount := 0
	for _, header := range b.config.Headers {
		name, value, _ := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		req.Header.Set(name, strings.TrimSpace(value))
		headerCount++
	}
	if headerCount > 0 {
		b.logger.Debug().
			Int("custom_headers", headerCount).
			Msg("custom headers applied")
	}
}

// applyAuthentication signs req when SigV4 is enabled
func (b *RequestBuilder) applyAuthentication(ctx context.Context, req *http.Request) error {
	logger := b.logger.With().Str("component", "auth").Logger()

	// Direct Lambda invocation is authorised by the Lambda API call itself
	if req.URL.Scheme == "lambda" {
		logger.Debug().Msg("lambda URL detected, skipping SigV4")
		return nil
	}

	if !b.config.SigV4Enabled {
		return nil
	}

	logger.Debug().
		Str("service", b.config.SigV4Service).
		Msg("applying AWS SigV4 signature")

	if err := b.applySigV4(ctx, req); err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "SigV4 signing failed")
	}
	return nil
}

// applySigV4 signs req with credentials from the default AWS chain
func (b *RequestBuilder) applySigV4(ctx context.Context, req *http.Request) error {
	service := b.config.SigV4Service

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to load AWS configuration").
			WithContext("suggestion", "ensure AWS credentials are configured")
	}

	region := cfg.Region
	if region == "" {
		return errors.New(errors.ErrorTypeAuth, "AWS region not configured").
			WithContext("suggestion", "set AWS_REGION or AWS_DEFAULT_REGION environment variable")
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to retrieve AWS credentials").
			WithContext("suggestion", "check AWS credential configuration")
	}

	signer := v4.NewSigner()
	if err := signer.SignHTTP(ctx, creds, req, emptyPayloadHash, service, region, time.Now()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to sign request with SigV4").
			WithContext("service", service).
			WithContext("region", region)
	}

	b.logger.Debug().
		Str("service", service).
		Str("region", region).
		Msg("SigV4 signature applied")

	return nil
}
