package aroi

import "strings"

// Recognized AROI contact tokens per the ContactInfo Information Sharing
// Specification. Token keys are matched case-insensitively; the canonical
// spelling is "url:" (the "aroi-url:" spelling seen in the wild is not
// accepted).
const (
	tokenURL          = "url"
	tokenProof        = "proof"
	tokenCiissVersion = "ciissversion"
)

// ContactInfo holds the AROI tokens parsed from a relay's contact field.
// An empty string means the token was absent; a token is only recognized
// when it carries a non-empty value.
type ContactInfo struct {
	URL          string
	Proof        string
	CiissVersion string
}

// ParseContact extracts AROI tokens from a free-text contact field.
// The contact field is operator-controlled and untrusted: unknown tokens are
// ignored, and a contact with no recognized tokens yields a zero ContactInfo
// rather than an error. The first occurrence of each token wins.
func ParseContact(contact string) ContactInfo {
	var info ContactInfo

	for _, token := range strings.Fields(contact) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || value == "" {
			continue
		}
		switch strings.ToLower(key) {
		case tokenURL:
			if info.URL == "" {
				info.URL = value
			}
		case tokenProof:
			if info.Proof == "" {
				info.Proof = value
			}
		case tokenCiissVersion:
			if info.CiissVersion == "" {
				info.CiissVersion = value
			}
		}
	}

	return info
}

// IsEmpty reports whether no recognized token was found.
func (c ContactInfo) IsEmpty() bool {
	return c == ContactInfo{}
}

// MissingFields returns the names of required AROI tokens that are absent,
// in the fixed order url, proof, ciissversion.
func (c ContactInfo) MissingFields() []string {
	var missing []string
	if c.URL == "" {
		missing = append(missing, "url")
	}
	if c.Proof == "" {
		missing = append(missing, "proof")
	}
	if c.CiissVersion == "" {
		missing = append(missing, "ciissversion")
	}
	return missing
}

// NormalizeDomain reduces a claimed URL or bare domain to a canonical domain
// string: the http:// or https:// scheme is stripped if present, as are any
// trailing slashes. No syntax validation is performed; a malformed domain
// passes through and fails naturally at the network step.
func NormalizeDomain(url string) string {
	domain := url
	if after, ok := strings.CutPrefix(domain, "https://"); ok {
		domain = after
	} else if after, ok := strings.CutPrefix(domain, "http://"); ok {
		domain = after
	}
	return strings.TrimRight(domain, "/")
}
