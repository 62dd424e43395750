package aroi

import (
	"log/slog"
	"net/http"
	"time"

	aroidns "github.com/synqronlabs/aroi/dns"
)

// Builder provides a fluent API for configuring a Validator.
type Builder struct {
	cfg Config
}

// New starts building a Validator with default configuration.
func New() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// Workers sets the worker pool size for ValidateBatch.
// Values below 2 select sequential validation.
func (b *Builder) Workers(n int) *Builder {
	b.cfg.Workers = n
	return b
}

// Nameservers sets the DNS servers used for dns-rsa lookups
// (e.g. "1.1.1.1:53"). They must validate DNSSEC.
func (b *Builder) Nameservers(servers ...string) *Builder {
	b.cfg.Nameservers = servers
	return b
}

// DNSTimeout bounds a single DNS query.
func (b *Builder) DNSTimeout(d time.Duration) *Builder {
	b.cfg.DNSTimeout = d
	return b
}

// HTTPTimeout bounds a single proof document fetch.
func (b *Builder) HTTPTimeout(d time.Duration) *Builder {
	b.cfg.HTTPTimeout = d
	return b
}

// Logger sets the logger for per-candidate debug records.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.cfg.Logger = logger
	return b
}

// Resolver overrides the DNS resolver used for dns-rsa proofs.
func (b *Builder) Resolver(r aroidns.Resolver) *Builder {
	b.cfg.Resolver = r
	return b
}

// HTTPClients overrides the uri-rsa fetch clients. Both must have
// redirects disabled; insecure may be nil to keep the default.
func (b *Builder) HTTPClients(client, insecure *http.Client) *Builder {
	b.cfg.HTTPClient = client
	b.cfg.InsecureHTTPClient = insecure
	return b
}

// Build creates the Validator.
func (b *Builder) Build() *Validator {
	return NewValidator(b.cfg)
}
