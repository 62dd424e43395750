package aroi

// Supported AROI proof types.
const (
	// ProofDNSRSA is verified through a DNSSEC-authenticated TXT record
	// on a fingerprint-scoped subdomain of the claimed domain.
	ProofDNSRSA = "dns-rsa"

	// ProofURIRSA is verified through a proof document served from a
	// well-known HTTPS path on the claimed domain.
	ProofURIRSA = "uri-rsa"
)

// Candidate is one relay record as observed from the network data source.
// The contact field is free text, operator-controlled and untrusted; it may
// be empty.
type Candidate struct {
	Fingerprint string `json:"fingerprint"`
	Nickname    string `json:"nickname"`
	Contact     string `json:"contact"`
}

// ValidationResult is the terminal verdict for one candidate.
// Exactly one result is produced per candidate and it is never mutated after
// creation. Error is empty exactly when Valid is true and no non-fatal
// warning (such as a bypassed TLS verification) applies.
type ValidationResult struct {
	Fingerprint  string `json:"fingerprint"`
	Nickname     string `json:"nickname"`
	Domain       string `json:"domain,omitempty"`
	ProofType    string `json:"proof_type,omitempty"`
	CiissVersion string `json:"ciissversion,omitempty"`
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
}
