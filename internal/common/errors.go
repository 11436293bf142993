// Package common defines shared constants and sentinel errors used across
// client and server layers of UploadHaven. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal    = errors.New("internal error")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors.
	ErrorIncorrectMetadata = errors.New("incorrect metadata")

	// Download token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Environment errors.
var (
	// ErrUnsupportedEnvironment means a required crypto primitive is missing.
	ErrUnsupportedEnvironment = errors.New("unsupported environment")
)

// Input errors are recoverable by the user correcting what they supplied.
var (
	ErrWeakPassword     = errors.New("password does not meet the policy")
	ErrPasswordRequired = errors.New("password required")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidFile      = errors.New("invalid file")
	ErrInvalidOptions   = errors.New("invalid options")
)

// Cryptographic errors. ErrDecryption is the cipher-layer failure;
// ErrWrongPasswordOrCorrupted is what orchestrators surface for it.
var (
	ErrDecryption               = errors.New("decryption failed")
	ErrWrongPasswordOrCorrupted = errors.New("wrong password or corrupted file")
	ErrMalformedPackage         = errors.New("malformed package")
	ErrSizeMismatch             = errors.New("size mismatch")
)

// Link and storage resolution errors.
var (
	ErrInvalidLinkFormat = errors.New("invalid link format")
	ErrNotFoundOrExpired = errors.New("file not found or expired")
	ErrAccessDenied      = errors.New("access denied")
	ErrUnavailable       = errors.New("storage unavailable")
)

// ErrCancelled is a user-initiated abort; it is not counted as a failure.
var ErrCancelled = errors.New("cancelled")
