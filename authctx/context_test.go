package authctx

import (
	"context"
	"errors"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authkit/token"
)

func testClaims(subject string) *token.Claims {
	return &token.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: subject},
		TokenType:        token.TypeAccess,
	}
}

func TestSetGet(t *testing.T) {
	ctx := Set(context.Background(), testClaims("user-1"))

	claims, ok := Get(ctx)
	if !ok {
		t.Fatal("expected claims in context")
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected user-1, got %q", claims.Subject)
	}
}

func TestGet_Missing(t *testing.T) {
	if _, ok := Get(context.Background()); ok {
		t.Error("expected no claims in an empty context")
	}
}

func TestGetOrError(t *testing.T) {
	ctx := Set(context.Background(), testClaims("user-3"))
	claims, err := GetOrError(ctx)
	if err != nil {
		t.Fatalf("GetOrError failed: %v", err)
	}
	if claims.Subject != "user-3" {
		t.Errorf("expected user-3, got %q", claims.Subject)
	}

	if _, err := GetOrError(context.Background()); !errors.Is(err, ErrNoClaims) {
		t.Errorf("expected ErrNoClaims, got %v", err)
	}
}

func TestMustGet_PanicsWhenMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustGet to panic without claims")
		}
	}()
	MustGet(context.Background())
}

func TestSubject(t *testing.T) {
	ctx := Set(context.Background(), testClaims("user-7"))
	subject, err := Subject(ctx)
	if err != nil {
		t.Fatalf("Subject failed: %v", err)
	}
	if subject != "user-7" {
		t.Errorf("expected user-7, got %q", subject)
	}

	if _, err := Subject(context.Background()); !errors.Is(err, ErrNoClaims) {
		t.Errorf("expected ErrNoClaims, got %v", err)
	}
}
