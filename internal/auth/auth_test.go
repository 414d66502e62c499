package auth_test

import (
	"net/http/httptest"
	"testing"

	"github.com/hostelgrub/api/internal/auth"
)

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := auth.NewToken()
		if err != nil {
			t.Fatalf("new token: %v", err)
		}
		if len(tok) != 2*auth.TokenBytes {
			t.Fatalf("token length: got %d, want %d", len(tok), 2*auth.TokenBytes)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer   spaced  ", "spaced"},
		{"Basic abc123", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := auth.BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q): got %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := auth.NormalizeEmail("  Amit@X.com "); got != "amit@x.com" {
		t.Errorf("got %q, want %q", got, "amit@x.com")
	}
}

func TestHashPIN_LegacyFormat(t *testing.T) {
	// sha256("1234")
	want := "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4"
	if got := auth.HashPIN("1234"); got != want {
		t.Fatalf("hash: got %s, want %s", got, want)
	}
	if !auth.VerifyPIN(want, "1234") {
		t.Error("expected legacy hash to verify")
	}
	if auth.VerifyPIN(want, "4321") {
		t.Error("expected wrong pin to fail")
	}
}

func TestVerifyPIN_Bcrypt(t *testing.T) {
	h, err := auth.HashPINBcrypt("9876")
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !auth.VerifyPIN(h, "9876") {
		t.Error("expected bcrypt hash to verify")
	}
	if auth.VerifyPIN(h, "1234") {
		t.Error("expected wrong pin to fail")
	}
}

func TestVerifyPIN_EmptyHash(t *testing.T) {
	if auth.VerifyPIN("", "") {
		t.Error("empty stored hash must never verify")
	}
}
