package aroi

import (
	"reflect"
	"testing"
)

func TestParseContact(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		want    ContactInfo
	}{
		{
			name:    "well-formed claim",
			contact: "Example Op <op@example.org> url:https://example.org proof:uri-rsa ciissversion:2",
			want:    ContactInfo{URL: "https://example.org", Proof: "uri-rsa", CiissVersion: "2"},
		},
		{
			name:    "keys matched case-insensitively",
			contact: "URL:example.org Proof:dns-rsa CiissVersion:2",
			want:    ContactInfo{URL: "example.org", Proof: "dns-rsa", CiissVersion: "2"},
		},
		{
			name:    "unknown tokens ignored",
			contact: "email:op@example.org pgp:0xDEADBEEF url:example.org proof:dns-rsa ciissversion:2",
			want:    ContactInfo{URL: "example.org", Proof: "dns-rsa", CiissVersion: "2"},
		},
		{
			name:    "empty value not recognized",
			contact: "url: proof:dns-rsa ciissversion:2",
			want:    ContactInfo{Proof: "dns-rsa", CiissVersion: "2"},
		},
		{
			name:    "aroi-url spelling not accepted",
			contact: "aroi-url:example.org proof:dns-rsa ciissversion:2",
			want:    ContactInfo{Proof: "dns-rsa", CiissVersion: "2"},
		},
		{
			name:    "first occurrence wins",
			contact: "url:first.example url:second.example proof:uri-rsa ciissversion:2",
			want:    ContactInfo{URL: "first.example", Proof: "uri-rsa", CiissVersion: "2"},
		},
		{
			name:    "empty contact",
			contact: "",
			want:    ContactInfo{},
		},
		{
			name:    "no recognized tokens",
			contact: "just a friendly operator",
			want:    ContactInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContact(tt.contact)
			if got != tt.want {
				t.Errorf("ParseContact() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name string
		info ContactInfo
		want []string
	}{
		{
			name: "all present",
			info: ContactInfo{URL: "a", Proof: "b", CiissVersion: "c"},
			want: nil,
		},
		{
			name: "all missing",
			info: ContactInfo{},
			want: []string{"url", "proof", "ciissversion"},
		},
		{
			name: "url missing",
			info: ContactInfo{Proof: "dns-rsa", CiissVersion: "2"},
			want: []string{"url"},
		},
		{
			name: "proof and version missing",
			info: ContactInfo{URL: "example.org"},
			want: []string{"proof", "ciissversion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.MissingFields(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.org", "example.org"},
		{"https://example.org/", "example.org"},
		{"http://example.org///", "example.org"},
		{"example.org", "example.org"},
		{"example.org/", "example.org"},
		{"https://sub.example.org/path", "sub.example.org/path"},
		{"not a domain", "not a domain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeDomain(tt.in); got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
