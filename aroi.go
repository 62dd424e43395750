// Package aroi validates Autonomous Relay Operator Identity (AROI) proof
// claims published in Tor relay contact fields.
//
// A relay operator claims a domain by adding AROI tokens to the relay's
// free-text contact field:
//
//	contact Example Op <op@example.org> url:example.org proof:uri-rsa ciissversion:2
//
// The validator parses those tokens, normalizes the claimed domain and runs
// the declared proof strategy out of band: dns-rsa checks for a
// DNSSEC-authenticated TXT record on a fingerprint-scoped subdomain
// (package dnsrsa), uri-rsa fetches a well-known proof document over HTTPS
// (package urirsa). Every candidate yields exactly one ValidationResult;
// failures are captured per candidate and never abort a batch.
//
// # Single candidate
//
//	validator := aroi.New().
//	    Nameservers("1.1.1.1:53").
//	    Build()
//	result := validator.Validate(ctx, candidate)
//	if result.Valid {
//	    fmt.Println("verified", result.Domain)
//	}
//
// # Batch validation
//
// ValidateBatch fans candidates out across a bounded worker pool, reports
// progress after each completion and honors a cooperative stop check:
//
//	validator := aroi.New().Workers(10).Build()
//	results := validator.ValidateBatch(ctx, candidates, aroi.BatchOptions{
//	    Progress: func(done, total int, r aroi.ValidationResult) {
//	        fmt.Printf("[%d/%d] %s valid=%v\n", done, total, r.Nickname, r.Valid)
//	    },
//	})
//	summary := aroi.Summarize(results)
//
// Candidates are typically obtained from the Onionoo network status API via
// package onionoo, and result collections can be persisted with package
// export.
package aroi
