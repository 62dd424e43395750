package aroi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	aroidns "github.com/synqronlabs/aroi/dns"
	"github.com/synqronlabs/aroi/dnsrsa"
	"github.com/synqronlabs/aroi/urirsa"
)

// SupportedCiissVersion is the only ContactInfo specification version this
// validator accepts.
const SupportedCiissVersion = "2"

// Config contains configuration options for a Validator.
// Prefer using the builder via aroi.New().
type Config struct {
	// Nameservers are the DNS servers used for dns-rsa lookups. They must
	// validate DNSSEC for dns-rsa proofs to ever verify. Defaults to the
	// system resolvers.
	Nameservers []string

	// DNSTimeout bounds a single DNS query. Default is 5 seconds.
	DNSTimeout time.Duration

	// HTTPTimeout bounds a single proof document fetch. Default is 10 seconds.
	HTTPTimeout time.Duration

	// Workers is the size of the worker pool used by ValidateBatch.
	// Values below 2 select sequential validation. Default is 10.
	Workers int

	// Logger receives per-candidate debug records. Defaults to slog.Default().
	Logger *slog.Logger

	// Resolver overrides the DNS resolver, mainly for tests.
	Resolver aroidns.Resolver

	// HTTPClient and InsecureHTTPClient override the uri-rsa fetch
	// clients, mainly for tests. Both must have redirects disabled.
	HTTPClient         *http.Client
	InsecureHTTPClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DNSTimeout:  5 * time.Second,
		HTTPTimeout: urirsa.DefaultTimeout,
		Workers:     10,
	}
}

// Validator verifies AROI proof claims for relay candidates.
// It is safe for concurrent use; the underlying DNS resolver and HTTP
// clients are shared read-only across workers.
type Validator struct {
	dnsVerifier dnsrsa.Verifier
	uriVerifier *urirsa.Verifier
	workers     int
	logger      *slog.Logger
}

// NewValidator creates a Validator from the given configuration.
// Zero-valued fields fall back to the DefaultConfig values.
func NewValidator(cfg Config) *Validator {
	if cfg.DNSTimeout == 0 {
		cfg.DNSTimeout = 5 * time.Second
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = urirsa.DefaultTimeout
	}
	if cfg.Workers == 0 {
		cfg.Workers = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = aroidns.NewResolver(aroidns.ResolverConfig{
			Nameservers: cfg.Nameservers,
			DNSSEC:      true,
			Timeout:     cfg.DNSTimeout,
		})
	}

	uriVerifier := urirsa.NewVerifier(cfg.HTTPTimeout)
	if cfg.HTTPClient != nil {
		uriVerifier.Client = cfg.HTTPClient
	}
	if cfg.InsecureHTTPClient != nil {
		uriVerifier.InsecureClient = cfg.InsecureHTTPClient
	}

	return &Validator{
		dnsVerifier: dnsrsa.Verifier{Resolver: resolver},
		uriVerifier: uriVerifier,
		workers:     cfg.Workers,
		logger:      cfg.Logger,
	}
}

// Validate produces the terminal verdict for a single candidate.
//
// Failure states are checked in a fixed order, each terminal: missing
// contact, missing AROI fields, unsupported ciissversion, then unsupported
// proof type. Input errors are detected before any network call. A network
// or content failure inside a proof strategy is captured into this
// candidate's result and never aborts a batch.
func (v *Validator) Validate(ctx context.Context, candidate Candidate) ValidationResult {
	result := ValidationResult{
		Fingerprint: candidate.Fingerprint,
		Nickname:    candidate.Nickname,
	}

	if strings.TrimSpace(candidate.Contact) == "" {
		result.Error = "No contact information"
		return result
	}

	info := ParseContact(candidate.Contact)
	if missing := info.MissingFields(); len(missing) > 0 {
		result.Domain = info.URL
		result.ProofType = info.Proof
		result.CiissVersion = info.CiissVersion
		result.Error = fmt.Sprintf("Missing AROI fields: %s.", strings.Join(missing, ", "))
		return result
	}

	result.ProofType = info.Proof
	result.CiissVersion = info.CiissVersion

	if info.CiissVersion != SupportedCiissVersion {
		result.Domain = info.URL
		result.Error = fmt.Sprintf("Unsupported ciissversion: %s", info.CiissVersion)
		return result
	}

	domain := NormalizeDomain(info.URL)
	result.Domain = domain

	switch info.Proof {
	case ProofDNSRSA:
		verdict := v.dnsVerifier.Verify(ctx, candidate.Fingerprint, domain)
		result.Valid = verdict.Valid
		result.Error = verdict.Detail
	case ProofURIRSA:
		verdict := v.uriVerifier.Verify(ctx, candidate.Fingerprint, domain)
		result.Valid = verdict.Valid
		result.Error = verdict.Detail
	default:
		result.Error = fmt.Sprintf("Unsupported proof type: '%s'.", info.Proof)
		return result
	}

	v.logger.Debug("validated relay",
		"fingerprint", candidate.Fingerprint,
		"proof", info.Proof,
		"domain", domain,
		"valid", result.Valid)

	return result
}

// Validate verifies a single candidate with a default Validator.
// For batch runs, construct a Validator once and reuse it so the DNS
// resolver and HTTP connection pool are shared.
func Validate(ctx context.Context, candidate Candidate) ValidationResult {
	return NewValidator(DefaultConfig()).Validate(ctx, candidate)
}
