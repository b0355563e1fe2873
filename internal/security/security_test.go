package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	if _, err := GeneratePassword(0); err == nil {
		t.Fatal("expected zero length to fail")
	}

	password, err := GeneratePassword(24)
	if err != nil {
		t.Fatalf("GeneratePassword returned error: %v", err)
	}
	if len(password) != 24 {
		t.Fatalf("expected 24 characters, got %d", len(password))
	}
	for _, char := range password {
		if !strings.ContainsRune(generatedPasswordAlphabet, char) {
			t.Fatalf("password contains %q outside alphabet", char)
		}
	}
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Correct-Horse-9")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !PasswordMatches(hash, "Correct-Horse-9") {
		t.Fatal("expected password to match its hash")
	}
	if PasswordMatches(hash, "correct-horse-9") {
		t.Fatal("expected different password to be rejected")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	t.Parallel()

	token, err := IssueToken(testSecret, 42, "customer", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "customer" || claims.Subject != "42" {
		t.Fatalf("unexpected claims %#v", claims)
	}
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	t.Parallel()

	expired, err := IssueToken(testSecret, 42, "customer", time.Hour, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	otherKey, err := IssueToken([]byte("another-secret-another-secret-xx"), 42, "customer", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{UserID: 42}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	for name, raw := range map[string]string{
		"expired":   expired,
		"other key": otherKey,
		"no expiry": noExpiry,
		"garbage":   "not-a-token",
	} {
		if _, err := ParseToken(testSecret, raw); err == nil {
			t.Fatalf("%s: expected token to be rejected", name)
		}
	}
}
