package aroi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	aroidns "github.com/synqronlabs/aroi/dns"
)

// countingResolver wraps a MockResolver with a concurrency-safe call count.
type countingResolver struct {
	inner aroidns.MockResolver
	calls atomic.Int64
}

func (r *countingResolver) LookupTXT(ctx context.Context, name string) (aroidns.Result, error) {
	r.calls.Add(1)
	return r.inner.LookupTXT(ctx, name)
}

// dnsBatch builds n dns-rsa candidates against a deterministic resolver.
// Even-numbered candidates have a valid, authenticated proof record.
func dnsBatch(n int) ([]Candidate, *countingResolver) {
	candidates := make([]Candidate, 0, n)
	txt := make(map[string][]string)

	for i := 0; i < n; i++ {
		fingerprint := fmt.Sprintf("FP%04d", i)
		candidates = append(candidates, Candidate{
			Fingerprint: fingerprint,
			Nickname:    fmt.Sprintf("relay%d", i),
			Contact:     "url:example.org proof:dns-rsa ciissversion:2",
		})
		if i%2 == 0 {
			txt[strings.ToLower(fingerprint)+".example.org."] = []string{"we-run-this-tor-relay"}
		}
	}

	return candidates, &countingResolver{inner: aroidns.MockResolver{TXT: txt, AllAuthentic: true}}
}

func resultKeys(results []ValidationResult) []string {
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, fmt.Sprintf("%s|%v|%s", r.Fingerprint, r.Valid, r.Error))
	}
	sort.Strings(keys)
	return keys
}

func TestBatchSequentialAndParallelAgree(t *testing.T) {
	const n = 16

	candidates, seqResolver := dnsBatch(n)
	sequential := New().Workers(1).Resolver(seqResolver).Build().
		ValidateBatch(context.Background(), candidates, BatchOptions{})

	_, parResolver := dnsBatch(n)
	parallel := New().Workers(4).Resolver(parResolver).Build().
		ValidateBatch(context.Background(), candidates, BatchOptions{})

	if len(sequential) != n || len(parallel) != n {
		t.Fatalf("got %d sequential and %d parallel results, want %d each", len(sequential), len(parallel), n)
	}

	seqKeys := resultKeys(sequential)
	parKeys := resultKeys(parallel)
	for i := range seqKeys {
		if seqKeys[i] != parKeys[i] {
			t.Fatalf("result sets differ at %d:\n  sequential: %s\n  parallel:   %s", i, seqKeys[i], parKeys[i])
		}
	}
}

func TestBatchProgress(t *testing.T) {
	const n = 6
	candidates, resolver := dnsBatch(n)

	var counts []int
	var totals []int
	New().Workers(3).Resolver(resolver).Build().
		ValidateBatch(context.Background(), candidates, BatchOptions{
			Progress: func(completed, total int, result ValidationResult) {
				counts = append(counts, completed)
				totals = append(totals, total)
			},
		})

	if len(counts) != n {
		t.Fatalf("progress called %d times, want %d", len(counts), n)
	}
	for i, c := range counts {
		if c != i+1 {
			t.Errorf("completed counts = %v, want 1..%d", counts, n)
			break
		}
	}
	for _, total := range totals {
		if total != n {
			t.Errorf("totals = %v, want all %d", totals, n)
			break
		}
	}
}

// gatedResolver admits one lookup per token in gate, so a test controls
// exactly how many validations can complete.
type gatedResolver struct {
	inner aroidns.MockResolver
	gate  chan struct{}
	calls atomic.Int64
}

func (r *gatedResolver) LookupTXT(ctx context.Context, name string) (aroidns.Result, error) {
	select {
	case <-r.gate:
	case <-ctx.Done():
		return aroidns.Result{}, ctx.Err()
	}
	r.calls.Add(1)
	return r.inner.LookupTXT(ctx, name)
}

func TestBatchStop(t *testing.T) {
	const (
		n      = 20
		stopAt = 5
	)

	candidates, counting := dnsBatch(n)
	resolver := &gatedResolver{
		inner: counting.inner,
		gate:  make(chan struct{}, stopAt),
	}
	for i := 0; i < stopAt; i++ {
		resolver.gate <- struct{}{}
	}

	completed := 0
	results := New().Workers(4).Resolver(resolver).Build().
		ValidateBatch(context.Background(), candidates, BatchOptions{
			Progress: func(done, total int, result ValidationResult) { completed = done },
			Stop:     func() bool { return completed >= stopAt },
		})

	if len(results) != stopAt {
		t.Fatalf("got %d results after stop, want %d", len(results), stopAt)
	}
	if calls := resolver.calls.Load(); calls != stopAt {
		t.Errorf("resolver completed %d lookups, want exactly %d", calls, stopAt)
	}
}

func TestBatchContextCancellation(t *testing.T) {
	const n = 10
	candidates, resolver := dnsBatch(n)

	ctx, cancel := context.WithCancel(context.Background())
	results := New().Workers(1).Resolver(resolver).Build().
		ValidateBatch(ctx, candidates, BatchOptions{
			Progress: func(done, total int, result ValidationResult) {
				if done == 3 {
					cancel()
				}
			},
		})

	if len(results) != 3 {
		t.Errorf("got %d results after cancellation, want 3", len(results))
	}
}

func TestBatchEmpty(t *testing.T) {
	validator := New().Workers(4).Resolver(aroidns.MockResolver{}).Build()
	if results := validator.ValidateBatch(context.Background(), nil, BatchOptions{}); len(results) != 0 {
		t.Errorf("got %d results for empty batch, want 0", len(results))
	}
}

func TestBatchEndToEnd(t *testing.T) {
	dnsFingerprint := "B2B2B2B2B2B2B2B2B2B2B2B2B2B2B2B2B2B2B2B2"
	uriFingerprint := "C3C3C3C3C3C3C3C3C3C3C3C3C3C3C3C3C3C3C3C3"

	candidates := []Candidate{
		{Fingerprint: "A1A1", Nickname: "silent"},
		{
			Fingerprint: dnsFingerprint,
			Nickname:    "dnsop",
			Contact:     "url:dns.example proof:dns-rsa ciissversion:2",
		},
		{
			Fingerprint: uriFingerprint,
			Nickname:    "uriop",
			Contact:     "url:uri.example proof:uri-rsa ciissversion:2",
		},
	}

	resolver := aroidns.MockResolver{
		TXT: map[string][]string{
			strings.ToLower(dnsFingerprint) + ".dns.example.": {"we-run-this-tor-relay"},
		},
		AllAuthentic: true,
	}
	httpClient, _ := httpStub(404, "not found")

	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			results := New().Workers(workers).Resolver(resolver).HTTPClients(httpClient, nil).Build().
				ValidateBatch(context.Background(), candidates, BatchOptions{})

			if len(results) != 3 {
				t.Fatalf("got %d results, want 3", len(results))
			}

			byFingerprint := make(map[string]ValidationResult, 3)
			for _, r := range results {
				byFingerprint[r.Fingerprint] = r
			}

			if r := byFingerprint["A1A1"]; r.Valid || r.Error != "No contact information" {
				t.Errorf("no-contact candidate: %+v", r)
			}
			if r := byFingerprint[dnsFingerprint]; !r.Valid || r.Error != "" {
				t.Errorf("dns-rsa candidate: %+v", r)
			}
			if r := byFingerprint[uriFingerprint]; r.Valid || !strings.Contains(r.Error, "HTTP returned status 404") {
				t.Errorf("uri-rsa candidate: %+v", r)
			}

			summary := Summarize(results)
			if summary.ValidRelays != 1 || summary.InvalidRelays != 2 {
				t.Errorf("summary: %+v", summary)
			}
		})
	}
}
