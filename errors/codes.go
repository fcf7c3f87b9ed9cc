package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input/registration errors
const (
	// ErrCodeInvalidInput indicates a malformed or missing request field.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeWeakPassword indicates the password failed a strength rule.
	ErrCodeWeakPassword ErrorCode = "WEAK_PASSWORD"
	// ErrCodeAlreadyExists indicates a duplicate identifier on registration.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Authentication/authorization errors
const (
	// ErrCodeInvalidCredentials indicates the identifier/password pair did not
	// match. It covers both unknown-identifier and wrong-password so callers
	// cannot probe for account existence.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeForbidden indicates the subject lacks a required permission.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeUnauthorized indicates the request carries no usable credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Token errors
const (
	// ErrCodeTokenExpired indicates the token's expiry has passed.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeTokenMalformed indicates a bad signature or missing/invalid claims.
	ErrCodeTokenMalformed ErrorCode = "TOKEN_MALFORMED"
	// ErrCodeInvalidRefreshToken indicates a refresh token was rejected,
	// without distinguishing expired from malformed.
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStoreError indicates the identity store failed.
	ErrCodeStoreError ErrorCode = "STORE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRateLimited: true,
	ErrCodeStoreError:  true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Authentication failures are never retryable: a rejected credential or token
// stays rejected until the caller changes the input.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
