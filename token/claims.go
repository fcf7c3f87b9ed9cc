package token

import (
	gojwt "github.com/golang-jwt/jwt/v5"
)

// Type distinguishes access tokens from refresh tokens. Every issued token
// carries its type as a claim so one can never be replayed as the other.
type Type string

const (
	// TypeAccess marks a short-lived bearer token.
	TypeAccess Type = "access"
	// TypeRefresh marks a long-lived token exchangeable for access tokens.
	TypeRefresh Type = "refresh"
)

// Claims is the signed claim set of every authkit token.
type Claims struct {
	gojwt.RegisteredClaims

	// TokenType is "access" or "refresh".
	TokenType Type `json:"token_type"`

	// Generation is the rotation marker of a refresh token. Present only
	// when rotation-on-use is enabled.
	Generation string `json:"gen,omitempty"`
}
