package token

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authkit/errors"
)

func testConfig() Config {
	return Config{
		Secret:          "test-signing-secret",
		Issuer:          "authkit-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(Config{})
	if err == nil {
		t.Fatal("expected construction to fail without a secret")
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc, err := NewService(testConfig())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	signed, err := svc.IssueAccessToken("user-123")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := svc.Validate(signed, TypeAccess)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %q", claims.Subject)
	}
	if claims.TokenType != TypeAccess {
		t.Errorf("expected token_type access, got %q", claims.TokenType)
	}
	if claims.Issuer != "authkit-test" {
		t.Errorf("expected issuer claim, got %q", claims.Issuer)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	issued := time.Now()
	clock := issued
	svc, _ := NewService(testConfig(), WithClock(func() time.Time { return clock }))

	signed, err := svc.IssueAccessToken("user-123")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	clock = issued.Add(16 * time.Minute)
	_, err = svc.Validate(signed, TypeAccess)
	if errors.CodeOf(err) != errors.ErrCodeTokenExpired {
		t.Errorf("expected TOKEN_EXPIRED, got %v", err)
	}
}

func TestValidate_TamperedSignature(t *testing.T) {
	svc, _ := NewService(testConfig())
	signed, _ := svc.IssueAccessToken("user-123")

	// Flip a character in the signature segment.
	idx := strings.LastIndex(signed, ".") + 1
	tampered := signed[:idx] + flipChar(signed[idx:])

	_, err := svc.Validate(tampered, TypeAccess)
	if errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED, got %v", err)
	}
}

func TestValidate_WrongKey(t *testing.T) {
	issuer, _ := NewService(testConfig())
	other, _ := NewService(Config{Secret: "some-other-secret"})

	signed, _ := issuer.IssueAccessToken("user-123")
	_, err := other.Validate(signed, TypeAccess)
	if errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED for wrong key, got %v", err)
	}
}

func TestValidate_Garbage(t *testing.T) {
	svc, _ := NewService(testConfig())
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Validate(tok, TypeAccess); errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
			t.Errorf("expected TOKEN_MALFORMED for %q, got %v", tok, err)
		}
	}
}

func TestValidate_TokenTypeConfusion(t *testing.T) {
	svc, _ := NewService(testConfig())

	access, _ := svc.IssueAccessToken("user-123")
	refresh, _ := svc.IssueRefreshToken("user-123")

	// An access token presented where a refresh token is expected must fail.
	if _, err := svc.Validate(access, TypeRefresh); errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED for access-as-refresh, got %v", err)
	}
	// And vice versa.
	if _, err := svc.Validate(refresh, TypeAccess); errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED for refresh-as-access, got %v", err)
	}
}

func TestValidate_MissingSubject(t *testing.T) {
	svc, _ := NewService(testConfig())

	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "authkit-test",
			IssuedAt:  gojwt.NewNumericDate(time.Now()),
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		TokenType: TypeAccess,
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Validate(signed, TypeAccess); errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED for missing subject, got %v", err)
	}
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	svc, _ := NewService(testConfig())

	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		TokenType: TypeAccess,
	}
	unsigned, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Validate(unsigned, TypeAccess); errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED for alg=none, got %v", err)
	}
}

func TestRefresh_WithoutRotation(t *testing.T) {
	svc, _ := NewService(testConfig())
	refresh, _ := svc.IssueRefreshToken("user-123")

	result, err := svc.Refresh(refresh)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if result.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %q", result.Subject)
	}
	if result.RefreshToken != "" {
		t.Error("rotation is off, no replacement refresh token expected")
	}

	claims, err := svc.Validate(result.AccessToken, TypeAccess)
	if err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("refresh must preserve the subject, got %q", claims.Subject)
	}

	// Without rotation the same refresh token stays usable.
	if _, err := svc.Refresh(refresh); err != nil {
		t.Errorf("non-rotating refresh token should remain valid: %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := NewService(testConfig())
	access, _ := svc.IssueAccessToken("user-123")

	_, err := svc.Refresh(access)
	if errors.CodeOf(err) != errors.ErrCodeTokenMalformed {
		t.Errorf("expected TOKEN_MALFORMED for access token in refresh, got %v", err)
	}
}

func flipChar(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	return string(b)
}
