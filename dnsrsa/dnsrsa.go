// Package dnsrsa verifies dns-rsa AROI proofs.
//
// A dns-rsa proof is a TXT record published on a fingerprint-scoped
// subdomain of the operator's claimed domain:
//
//	<fingerprint>.example.org. IN TXT "we-run-this-tor-relay"
//
// Scoping the record to the lowercased relay fingerprint binds the proof to
// one specific relay identity, so a single record cannot vouch for every
// relay that names the same domain. The record must additionally be
// DNSSEC-authenticated: the verifier requires the AD flag on the response,
// which rules out on-path spoofing of the claim.
//
// Basic usage:
//
//	verifier := dnsrsa.Verifier{Resolver: dns.NewResolver(dns.ResolverConfig{DNSSEC: true})}
//	result := verifier.Verify(ctx, fingerprint, domain)
//	if result.Valid {
//	    // proof verified
//	}
package dnsrsa

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/idna"

	aroidns "github.com/synqronlabs/aroi/dns"
)

// ProofValue is the exact TXT record content required by the ContactInfo
// specification v2. The comparison is case-sensitive.
const ProofValue = "we-run-this-tor-relay"

// Result is the verdict of a dns-rsa proof check.
type Result struct {
	// Valid reports whether the proof was found and DNSSEC-authenticated.
	Valid bool

	// Detail is a human-readable diagnostic. It is populated on failure
	// and identifies which expectation was not met.
	Detail string
}

// Verifier checks dns-rsa proofs against a DNS resolver.
type Verifier struct {
	// Resolver performs the TXT lookups. It must request DNSSEC material
	// for Verify to ever succeed, since an unauthenticated answer is
	// rejected.
	Resolver aroidns.Resolver
}

// Verify checks the dns-rsa proof for the given relay fingerprint and
// normalized domain. Both must be non-empty. All failures, including
// transport errors, are reported through the Result rather than an error
// return so that one relay's lookup failure stays scoped to its own verdict.
func (v *Verifier) Verify(ctx context.Context, fingerprint, domain string) Result {
	recordName := QueryName(fingerprint, domain)

	result, err := v.Resolver.LookupTXT(ctx, recordName)
	if err != nil {
		if aroidns.IsNotFound(err) {
			return Result{Detail: fmt.Sprintf("No TXT records found at %s; expected '%s'.", recordName, ProofValue)}
		}
		return Result{Detail: fmt.Sprintf("DNS query failed for %s: %v", recordName, err)}
	}

	if len(result.Records) == 0 {
		return Result{Detail: fmt.Sprintf("No TXT records found at %s; expected '%s'.", recordName, ProofValue)}
	}

	found := false
	for _, record := range result.Records {
		if record == ProofValue {
			found = true
			break
		}
	}
	if !found {
		quoted := make([]string, len(result.Records))
		for i, record := range result.Records {
			quoted[i] = "'" + record + "'"
		}
		return Result{Detail: fmt.Sprintf("TXT record mismatch at %s: found %s; expected '%s'.",
			recordName, strings.Join(quoted, ", "), ProofValue)}
	}

	if !result.Authentic {
		return Result{Detail: "DNSSEC validation failed (AD flag not set)."}
	}

	return Result{Valid: true}
}

// QueryName builds the fingerprint-scoped record name for a proof lookup.
// The fingerprint is lowercased to form a DNS label, and an internationalized
// domain is converted to its ASCII form. Conversion failures fall through to
// the raw domain, which then fails at resolution time.
func QueryName(fingerprint, domain string) string {
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		domain = ascii
	}
	return strings.ToLower(fingerprint) + "." + domain
}
