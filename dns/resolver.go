package dns

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// ResolverConfig contains configuration for the TXT resolver.
type ResolverConfig struct {
	// Nameservers is a list of DNS servers to query (e.g., "1.1.1.1:53").
	// If empty, system resolvers from /etc/resolv.conf are used,
	// falling back to public DNS (1.1.1.1, 8.8.8.8).
	Nameservers []string

	// DNSSEC sets the EDNS0 DO bit and requests the AD flag on queries.
	// Requires a DNSSEC-validating upstream resolver for Authentic to
	// ever be true.
	DNSSEC bool

	// Timeout is the timeout for an individual DNS query. Default is 5 seconds.
	Timeout time.Duration

	// Retries is the number of retries for failed queries. Default is 2.
	Retries int
}

// TXTResolver implements Resolver using github.com/miekg/dns.
// It is safe for concurrent use.
type TXTResolver struct {
	config    ResolverConfig
	udpClient *mdns.Client
	tcpClient *mdns.Client
}

var _ Resolver = (*TXTResolver)(nil)

// NewResolver creates a TXT resolver with optional DNSSEC support.
func NewResolver(config ResolverConfig) *TXTResolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Retries == 0 {
		config.Retries = 2
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = systemNameservers()
	}

	return &TXTResolver{
		config:    config,
		udpClient: &mdns.Client{Timeout: config.Timeout},
		tcpClient: &mdns.Client{Net: "tcp", Timeout: config.Timeout},
	}
}

// systemNameservers reads DNS servers from resolv.conf.
func systemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		// Fallback to common public DNS servers
		return []string{"1.1.1.1:53", "8.8.8.8:53"}
	}

	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		if !strings.Contains(s, ":") {
			s = net.JoinHostPort(s, config.Port)
		}
		servers = append(servers, s)
	}
	return servers
}

// LookupTXT retrieves TXT records for the given name.
// Multi-segment TXT records are joined into a single string per record, and
// byte sequences that are not valid UTF-8 are dropped rather than failing
// the whole lookup.
func (r *TXTResolver) LookupTXT(ctx context.Context, name string) (Result, error) {
	resp, authentic, err := r.query(ctx, name)
	if err != nil {
		return Result{Authentic: authentic}, err
	}

	var records []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*mdns.TXT); ok {
			records = append(records, strings.ToValidUTF8(strings.Join(txt.Txt, ""), ""))
		}
	}

	if len(records) == 0 {
		return Result{Authentic: authentic}, ErrNotFound
	}

	return Result{Records: records, Authentic: authentic}, nil
}

// query performs a TXT query with retries, DNSSEC flags and a TCP retry on
// truncated responses.
func (r *TXTResolver) query(ctx context.Context, name string) (*mdns.Msg, bool, error) {
	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(name), mdns.TypeTXT)
	m.RecursionDesired = true

	if r.config.DNSSEC {
		m.SetEdns0(4096, true) // EDNS0 with DO bit
		m.AuthenticatedData = true
	}

	var lastErr error
	authentic := false

	for i := 0; i <= r.config.Retries; i++ {
		for _, server := range r.config.Nameservers {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			default:
			}

			resp, _, err := r.udpClient.ExchangeContext(ctx, m, server)
			if err == nil && resp.Truncated {
				// Answer did not fit in UDP, retry over TCP
				resp, _, err = r.tcpClient.ExchangeContext(ctx, m, server)
			}
			if err != nil {
				if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
					lastErr = fmt.Errorf("%w: %v", ErrTimeout, err)
				} else {
					lastErr = fmt.Errorf("dns query failed: %w", err)
				}
				continue
			}

			if r.config.DNSSEC && resp.AuthenticatedData {
				authentic = true
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, authentic, nil
			case mdns.RcodeNameError: // NXDOMAIN
				return nil, authentic, ErrNotFound
			case mdns.RcodeServerFailure:
				// SERVFAIL from a validating resolver may indicate
				// a DNSSEC validation failure
				if r.config.DNSSEC {
					lastErr = ErrBogus
				} else {
					lastErr = ErrServFail
				}
				continue
			case mdns.RcodeRefused:
				lastErr = ErrRefused
				continue
			default:
				lastErr = fmt.Errorf("dns: unexpected rcode %s", mdns.RcodeToString[resp.Rcode])
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, false, lastErr
	}
	return nil, false, ErrServFail
}

// Config returns the resolver's current configuration.
func (r *TXTResolver) Config() ResolverConfig {
	return r.config
}
