package errors

import "errors"

// Common error types for the portal client
var (
	// Session errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionNotFound    = errors.New("session not found")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrMalformedLogin     = errors.New("login response is missing the user or token")

	// Store errors
	ErrStoreSealed    = errors.New("session store is sealed with a different passphrase")
	ErrStoreCorrupted = errors.New("session store is corrupted")

	// Upload errors
	ErrNoFile             = errors.New("please select a file to upload")
	ErrFileTooLarge       = errors.New("file exceeds the maximum upload size")
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")

	// Social login errors
	ErrInvalidState    = errors.New("invalid state parameter")
	ErrInvalidNonce    = errors.New("invalid nonce")
	ErrMissingIDToken  = errors.New("no ID token in response")
	ErrSocialNotConfig = errors.New("social login is not configured")
)
