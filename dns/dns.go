// Package dns provides DNSSEC-aware TXT record resolution for AROI proof
// verification.
//
// The resolver queries over UDP first and retries over TCP when the response
// is truncated. Queries are sent with the EDNS0 DO bit set so that a
// validating upstream resolver reports authentication via the AD flag, which
// is surfaced as Result.Authentic.
package dns

import (
	"context"
	"errors"
)

// DNS lookup errors.
var (
	// ErrNotFound indicates the name does not exist (NXDOMAIN) or no
	// records of the requested type were returned.
	ErrNotFound = errors.New("dns: no records found")

	// ErrServFail indicates the upstream resolver returned SERVFAIL.
	ErrServFail = errors.New("dns: server failure")

	// ErrRefused indicates the upstream resolver refused the query.
	ErrRefused = errors.New("dns: query refused")

	// ErrTimeout indicates the query timed out.
	ErrTimeout = errors.New("dns: query timed out")

	// ErrBogus indicates a SERVFAIL from a validating resolver, which
	// typically means DNSSEC validation of the zone failed.
	ErrBogus = errors.New("dns: dnssec validation failed")
)

// Result is the outcome of a TXT lookup.
type Result struct {
	// Records holds one string per TXT record. Multi-segment TXT records
	// are joined into a single string per RFC 7208 Section 3.3.
	Records []string

	// Authentic reports whether the response carried the AD flag, i.e.
	// the upstream resolver validated the answer with DNSSEC.
	Authentic bool
}

// Resolver performs TXT lookups for proof verification.
type Resolver interface {
	// LookupTXT retrieves TXT records for the given name. The name may be
	// relative or fully qualified; implementations qualify it as needed.
	LookupTXT(ctx context.Context, name string) (Result, error)
}

// IsNotFound reports whether err indicates a missing record or name.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout reports whether err indicates a query timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsTemporary reports whether the query may succeed if retried later.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrServFail)
}
