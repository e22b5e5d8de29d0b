package testutil

import (
	"time"

	"github.com/recipeblog/recipeq/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder starts from the built-in profiles and a short timeout
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.NewConfig()
	cfg.Timeout = 5 * time.Second
	return &ConfigBuilder{config: cfg}
}

func (b *ConfigBuilder) WithServer(server string) *ConfigBuilder {
	b.config.Server = server
	return b
}

func (b *ConfigBuilder) WithOpenAPIURL(url string) *ConfigBuilder {
	b.config.OpenAPIURL = url
	return b
}

func (b *ConfigBuilder) WithHeaders(headers ...string) *ConfigBuilder {
	b.config.Headers = append(b.config.Headers, headers...)
	return b
}

func (b *ConfigBuilder) WithBearer(token string) *ConfigBuilder {
	b.config.Bearer = token
	return b
}

func (b *ConfigBuilder) WithSession(session string) *ConfigBuilder {
	b.config.Session = session
	return b
}

func (b *ConfigBuilder) WithTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.Timeout = timeout
	return b
}

func (b *ConfigBuilder) WithVerbose() *ConfigBuilder {
	b.config.Verbose = true
	return b
}

func (b *ConfigBuilder) WithIncludeHeaders() *ConfigBuilder {
	b.config.IncludeHeaders = true
	return b
}

func (b *ConfigBuilder) WithExplain() *ConfigBuilder {
	b.config.Explain = true
	return b
}

func (b *ConfigBuilder) WithNoSend() *ConfigBuilder {
	b.config.NoSend = true
	return b
}

func (b *ConfigBuilder) WithSigV4(service string) *ConfigBuilder {
	b.config.SigV4Enabled = true
	b.config.SigV4Service = service
	return b
}

func (b *ConfigBuilder) WithProfile(p config.Profile) *ConfigBuilder {
	b.config.Profiles[p.Name] = p
	return b
}

func (b *ConfigBuilder) WithMCPProfiles(names ...string) *ConfigBuilder {
	b.config.MCP.AllowedProfiles = names
	return b
}

func (b *ConfigBuilder) WithMCPDescription(desc string) *ConfigBuilder {
	b.config.MCP.Description = desc
	return b
}

func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}

// BlogConfig returns a config pointed at server with the test session
func BlogConfig(server string) *config.Config {
	return NewConfigBuilder().WithServer(server).WithSession(SessionID).Build()
}
