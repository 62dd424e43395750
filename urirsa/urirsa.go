// Package urirsa verifies uri-rsa AROI proofs.
//
// A uri-rsa proof is a plain-text document served over HTTPS from a
// well-known path on the operator's claimed domain:
//
//	https://example.org/.well-known/tor-relay/rsa-fingerprint.txt
//
// The document lists one relay fingerprint per line; a relay's proof is
// accepted only when its fingerprint appears as an exact line, compared
// case-insensitively. Substring matches inside unrelated text are rejected.
//
// Redirects are never followed blindly: the verifier inspects the Location
// header and follows a single redirect only when the target host contains
// the original domain, which prevents proof hijack through an open redirect
// on an unrelated host.
//
// Broken certificates are common among small relay operators, so a TLS
// certificate failure triggers one retry without certificate verification.
// A proof found this way is still reported valid, but the verdict carries a
// diagnostic noting the bypass so consumers can flag it for manual review.
package urirsa

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WellKnownPath is the fixed proof document location on the claimed domain,
// per the ContactInfo specification v2.
const WellKnownPath = "/.well-known/tor-relay/rsa-fingerprint.txt"

// FallbackUserAgent is the browser-like user agent sent on the relaxed-TLS
// retry, improving compatibility with misconfigured servers.
const FallbackUserAgent = "Mozilla/5.0 (compatible; AROI-Validator/1.0)"

// DefaultTimeout bounds a single proof fetch.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a proof document is read.
const maxBodySize = 1 << 20

// Result is the verdict of a uri-rsa proof check.
type Result struct {
	// Valid reports whether the proof document was fetched and contains
	// the relay fingerprint.
	Valid bool

	// Detail is a human-readable diagnostic. It is populated on failure,
	// and on success when certificate verification was bypassed.
	Detail string
}

// Verifier fetches and checks uri-rsa proof documents.
type Verifier struct {
	// Client performs the initial fetch with full certificate
	// verification. Redirects must be disabled so they can be inspected.
	Client *http.Client

	// InsecureClient performs the relaxed-TLS retry without certificate
	// verification. Redirects must be disabled here as well.
	InsecureClient *http.Client
}

// NewVerifier creates a Verifier whose clients share the given timeout.
func NewVerifier(timeout time.Duration) *Verifier {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Verifier{
		Client: &http.Client{
			Timeout:       timeout,
			CheckRedirect: noRedirect,
		},
		InsecureClient: &http.Client{
			Timeout:       timeout,
			CheckRedirect: noRedirect,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

func noRedirect(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}

// redirectError marks a redirect that left the claimed domain. It is a
// terminal verdict, never retried over the relaxed-TLS path.
type redirectError struct {
	location string
}

func (e redirectError) Error() string {
	return fmt.Sprintf("Redirect to disallowed domain: '%s'.", e.location)
}

// Verify checks the uri-rsa proof for the given relay fingerprint and
// normalized domain. All failures, including transport errors, are reported
// through the Result rather than an error return.
func (v *Verifier) Verify(ctx context.Context, fingerprint, domain string) Result {
	proofURL := "https://" + domain + WellKnownPath

	body, status, err := v.fetch(ctx, v.Client, proofURL, domain, "")
	var tlsDetail string
	if err != nil {
		var redirErr redirectError
		if errors.As(err, &redirErr) {
			return Result{Detail: redirErr.Error()}
		}
		if !isTLSError(err) {
			return Result{Detail: fmt.Sprintf("HTTP request failed for '%s': %v", proofURL, err)}
		}

		// Certificate problems are common on small operator domains.
		// Retry once without verification, but never let the bypass go
		// unflagged in the verdict.
		tlsErr := err
		body, status, err = v.fetch(ctx, v.InsecureClient, proofURL, domain, FallbackUserAgent)
		if err != nil {
			if errors.As(err, &redirErr) {
				return Result{Detail: redirErr.Error()}
			}
			return Result{Detail: fmt.Sprintf("Connection failed even without TLS verification for '%s': %v", proofURL, err)}
		}
		tlsDetail = fmt.Sprintf("TLS certificate verification bypassed: %v", tlsErr)
	}

	if status < 200 || status > 299 {
		return Result{Detail: fmt.Sprintf("HTTP returned status %d from '%s'.", status, proofURL)}
	}

	if !containsFingerprintLine(body, fingerprint) {
		return Result{Detail: fmt.Sprintf("Fingerprint '%s' not found in .well-known file at '%s'.",
			strings.ToUpper(fingerprint), proofURL)}
	}

	return Result{Valid: true, Detail: tlsDetail}
}

// fetch retrieves the proof document with redirects disabled, following at
// most one redirect after checking that its target host stays on the claimed
// domain. It returns the response body and final status code.
func (v *Verifier) fetch(ctx context.Context, client *http.Client, proofURL, domain, userAgent string) (string, int, error) {
	resp, err := v.get(ctx, client, proofURL, userAgent)
	if err != nil {
		return "", 0, err
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		resp.Body.Close()

		target, ok := allowedRedirect(proofURL, location, domain)
		if !ok {
			return "", 0, redirectError{location: location}
		}

		resp, err = v.get(ctx, client, target, userAgent)
		if err != nil {
			return "", 0, err
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", 0, fmt.Errorf("reading proof document: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

func (v *Verifier) get(ctx context.Context, client *http.Client, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/plain, */*")
	}
	return client.Do(req)
}

// allowedRedirect resolves a Location header against the request URL and
// reports whether the redirect target host contains the original domain.
func allowedRedirect(rawBase, location, domain string) (string, bool) {
	if location == "" {
		return "", false
	}
	base, err := url.Parse(rawBase)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", false
	}
	target := base.ResolveReference(ref)
	if !strings.Contains(target.Host, domain) {
		return "", false
	}
	return target.String(), true
}

// containsFingerprintLine reports whether the fingerprint appears as an
// exact line of the proof document, compared case-insensitively. Substring
// occurrences inside larger lines do not count.
func containsFingerprintLine(body, fingerprint string) bool {
	for _, line := range strings.Split(body, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), fingerprint) {
			return true
		}
	}
	return false
}

// isTLSError reports whether err stems from TLS certificate verification,
// the condition under which the relaxed-TLS retry applies.
func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return true
	}
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &invalidErr) {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	// url.Error wraps transport errors with only string context in some
	// handshake paths
	return strings.Contains(err.Error(), "tls:") || strings.Contains(err.Error(), "x509:")
}
