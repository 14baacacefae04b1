package auth

import portalerrors "github.com/studyhub/portal/internal/errors"

var (
	ErrMissingCredentials = portalerrors.ErrMissingCredentials
	ErrMalformedLogin     = portalerrors.ErrMalformedLogin
	ErrNotAuthenticated   = portalerrors.ErrNotAuthenticated
	ErrStoreCorrupted     = portalerrors.ErrStoreCorrupted
)
