package util

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"jane@x.com", "a.b+c@sub.example.org", "x@y.z"}
	for _, s := range valid {
		if !ValidEmail(s) {
			t.Errorf("ValidEmail(%q): got false, want true", s)
		}
	}

	invalid := []string{"", "jane", "jane@", "jane@x", "@x.com", "ja ne@x.com", "jane@x .com", "a@b@c.com",
		"jane\u00a0doe@x.com", "jane@x\u2003y.com", "jane@x.c\u3000m", "ja\vne@x.com", "\ufeffjane@x.com"}
	for _, s := range invalid {
		if ValidEmail(s) {
			t.Errorf("ValidEmail(%q): got true, want false", s)
		}
	}
}

func TestLocalPart(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"support@helios.resend.app": "support",
		"unknown-user@x.com":        "unknown-user",
		"no-at-sign":                "no-at-sign",
		"":                          "",
	}
	for in, want := range tests {
		if got := LocalPart(in); got != want {
			t.Errorf("LocalPart(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestBareAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Jane Doe <jane@x.com>": "jane@x.com",
		"<jane@x.com>":          "jane@x.com",
		" jane@x.com ":          "jane@x.com",
	}
	for in, want := range tests {
		if got := BareAddress(in); got != want {
			t.Errorf("BareAddress(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName_AngleBrackets(t *testing.T) {
	t.Parallel()

	if got := DisplayName("Jane Doe <jane@x.com>"); got != "Jane Doe" {
		t.Errorf("DisplayName: got %q, want %q", got, "Jane Doe")
	}
	if got := FirstName("Jane Doe <jane@x.com>"); got != "Jane" {
		t.Errorf("FirstName: got %q, want %q", got, "Jane")
	}
	if got := DisplayName(`"Doe, Jane" <jane@x.com>`); got != "Doe, Jane" {
		t.Errorf("DisplayName quoted: got %q, want %q", got, "Doe, Jane")
	}
}

func TestDisplayName_BareAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"jane.doe@x.com":   "Jane doe",
		"john_smith@x.com": "John smith",
		"mary-ann@x.com":   "Mary ann",
		"<bob@x.com>":      "Bob",
		"x@y.com":          "X",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q): got %q, want %q", in, got, want)
		}
	}
	if got := FirstName("jane.doe@x.com"); got != "Jane" {
		t.Errorf("FirstName: got %q, want %q", got, "Jane")
	}
}

func TestNewID(t *testing.T) {
	t.Parallel()

	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("NewID returned duplicate %q", a)
	}
	id, err := ulid.ParseStrict(a)
	if err != nil {
		t.Fatalf("ParseStrict(%q): %v", a, err)
	}
	if d := time.Since(ulid.Time(id.Time())); d < 0 || d > time.Minute {
		t.Errorf("unexpected ulid timestamp skew %v", d)
	}
}
