package aroi

// ProofTypeStats aggregates results for a single proof type.
type ProofTypeStats struct {
	Total       int     `json:"total"`
	Valid       int     `json:"valid"`
	SuccessRate float64 `json:"success_rate"`
}

// ProofTypeBreakdown splits a batch by declared proof type. NoProof counts
// candidates whose validation terminated before a proof type was recorded.
type ProofTypeBreakdown struct {
	DNSRSA  ProofTypeStats `json:"dns_rsa"`
	URIRSA  ProofTypeStats `json:"uri_rsa"`
	NoProof struct {
		Total int `json:"total"`
	} `json:"no_proof"`
}

// Summary aggregates a batch of validation results.
type Summary struct {
	TotalRelays   int                `json:"total_relays"`
	ValidRelays   int                `json:"valid_relays"`
	InvalidRelays int                `json:"invalid_relays"`
	SuccessRate   float64            `json:"success_rate"`
	ProofTypes    ProofTypeBreakdown `json:"proof_types"`
}

// Summarize computes batch statistics over a result collection.
func Summarize(results []ValidationResult) Summary {
	s := Summary{TotalRelays: len(results)}

	for _, r := range results {
		if r.Valid {
			s.ValidRelays++
		}
		switch r.ProofType {
		case ProofDNSRSA:
			s.ProofTypes.DNSRSA.Total++
			if r.Valid {
				s.ProofTypes.DNSRSA.Valid++
			}
		case ProofURIRSA:
			s.ProofTypes.URIRSA.Total++
			if r.Valid {
				s.ProofTypes.URIRSA.Valid++
			}
		case "":
			s.ProofTypes.NoProof.Total++
		}
	}

	s.InvalidRelays = s.TotalRelays - s.ValidRelays
	s.SuccessRate = successRate(s.ValidRelays, s.TotalRelays)
	s.ProofTypes.DNSRSA.SuccessRate = successRate(s.ProofTypes.DNSRSA.Valid, s.ProofTypes.DNSRSA.Total)
	s.ProofTypes.URIRSA.SuccessRate = successRate(s.ProofTypes.URIRSA.Valid, s.ProofTypes.URIRSA.Total)

	return s
}

func successRate(valid, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(valid) / float64(total) * 100
}
