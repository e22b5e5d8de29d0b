package config

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	DefaultServer  = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second

	// SessionCookie is the cookie the blog uses to find a user's shopping list
	SessionCookie = "GoRecipeBlog_sessionid"
)

// Config holds all application configuration
type Config struct {
	// Target
	Server     string
	OpenAPIURL string
	Timeout    time.Duration

	// Request decoration
	Headers      []string
	Bearer       string
	Session      string
	SigV4Enabled bool
	SigV4Service string

	// Output
	Verbose        bool
	Debug          bool
	IncludeHeaders bool
	Explain        bool
	NoSend         bool

	Profiles map[string]Profile

	MCP MCPConfig
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description     string
	AllowedProfiles []string // empty means every profile
}

type contextKey string

const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values and the built-in profiles
func NewConfig() *Config {
	return &Config{
		Server:       DefaultServer,
		Timeout:      DefaultTimeout,
		SigV4Service: "execute-api",
		Profiles:     DefaultProfiles(),
	}
}

// RegisterFlags adds every flag LoadFromFlags reads to flags
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("server", "", "Blog server URL (env RECIPEQ_SERVER, default "+DefaultServer+")")
	flags.String("openapi", "", "OpenAPI document describing the blog (env RECIPEQ_OPENAPI)")
	flags.Duration("timeout", DefaultTimeout, "Request timeout")
	flags.StringSliceP("header", "H", []string{}, "Extra request header(s) as 'Name: value'")
	flags.String("bearer", "", "Bearer token for the Authorization header (env RECIPEQ_BEARER)")
	flags.String("session", "", "Blog session id sent as the "+SessionCookie+" cookie (env RECIPEQ_SESSION)")
	flags.Bool("sig-v4", false, "Sign requests with AWS SigV4")
	flags.String("sig-v4-service", "execute-api", "AWS service name for SigV4 signing")
	flags.BoolP("verbose", "v", false, "Show request and response details")
	flags.Bool("debug", false, "Debug logging")
	flags.BoolP("include", "i", false, "Include response headers in output")
	flags.Bool("explain", false, "Print a breakdown of the built query")
	flags.Bool("no-send", false, "Build and print the URL without sending it")
	flags.String("mcp-desc", "", "Server description reported to MCP clients (env RECIPEQ_MCP_DESCRIPTION)")
	flags.StringSlice("mcp-profiles", []string{}, "Profiles exposed as MCP tools (default all)")
}

// LoadFromFlags creates a Config from command line flags and environment
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	config := NewConfig()

	var err error
	var server string
	if server, err = flags.GetString("server"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get server flag")
	}
	if server == "" {
		server = os.Getenv("RECIPEQ_SERVER")
	}
	if server != "" {
		config.Server = server
	}

	if config.OpenAPIURL, err = flags.GetString("openapi"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get openapi flag")
	}
	if config.OpenAPIURL == "" {
		config.OpenAPIURL = os.Getenv("RECIPEQ_OPENAPI")
	}

	if config.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get timeout flag")
	}

	if config.Headers, err = flags.GetStringSlice("header"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get header flag")
	}

	if config.Bearer, err = flags.GetString("bearer"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get bearer flag")
	}
	if config.Bearer == "" {
		config.Bearer = os.Getenv("RECIPEQ_BEARER")
	}

	if config.Session, err = flags.GetString("session"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get session flag")
	}
	if config.Session == "" {
		config.Session = os.Getenv("RECIPEQ_SESSION")
	}

	if config.SigV4Enabled, err = flags.GetBool("sig-v4"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sig-v4 flag")
	}
	if config.SigV4Service, err = flags.GetString("sig-v4-service"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sig-v4-service flag")
	}

	if config.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get verbose flag")
	}
	if config.Debug, err = flags.GetBool("debug"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get debug flag")
	}
	if config.IncludeHeaders, err = flags.GetBool("include"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get include flag")
	}
	if config.Explain, err = flags.GetBool("explain"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get explain flag")
	}
	if config.NoSend, err = flags.GetBool("no-send"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get no-send flag")
	}

	if config.MCP.Description, err = flags.GetString("mcp-desc"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get mcp-desc flag")
	}
	if config.MCP.Description == "" {
		config.MCP.Description = os.Getenv("RECIPEQ_MCP_DESCRIPTION")
	}
	if config.MCP.AllowedProfiles, err = flags.GetStringSlice("mcp-profiles"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get mcp-profiles flag")
	}

	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return config, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New(errors.ErrorTypeConfig, "server URL is required").
			WithContext("config_type", "server").
			WithContext("suggestion", "use --server or set RECIPEQ_SERVER")
	}

	parsed, err := url.Parse(c.Server)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid server URL").
			WithContext("config_type", "server").
			WithContext("server_url", c.Server)
	}
	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return errors.New(errors.ErrorTypeConfig, "server URL must include a host").
				WithContext("config_type", "server").
				WithContext("server_url", c.Server)
		}
	case "lambda":
		if parsed.Host == "" {
			return errors.New(errors.ErrorTypeConfig, "lambda URL must name a function").
				WithContext("config_type", "server").
				WithContext("server_url", c.Server)
		}
	default:
		return errors.New(errors.ErrorTypeConfig, "server URL must be complete (e.g., http://localhost:8000)").
			WithContext("config_type", "server").
			WithContext("server_url", c.Server)
	}
	if parsed.RawQuery != "" || strings.Contains(c.Server, "?") {
		return errors.New(errors.ErrorTypeConfig, "server URL must not carry a query string").
			WithContext("config_type", "server").
			WithContext("server_url", c.Server)
	}

	if c.Timeout <= 0 {
		return errors.New(errors.ErrorTypeConfig, "timeout must be positive").
			WithContext("config_type", "timeout").
			WithContext("timeout", c.Timeout.String())
	}

	for name, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid profile").
				WithContext("config_type", "profile").
				WithContext("profile", name)
		}
	}

	for _, name := range c.MCP.AllowedProfiles {
		if _, ok := c.Profiles[name]; !ok {
			return errors.New(errors.ErrorTypeConfig, "unknown profile in mcp-profiles").
				WithContext("config_type", "mcp").
				WithContext("profile", name)
		}
	}

	return nil
}

// Profile looks up a profile by name
func (c *Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, errors.New(errors.ErrorTypeConfig, "unknown profile").
			WithContext("config_type", "profile").
			WithContext("profile", name)
	}
	return p, nil
}
