package client

import (
	sdkerrors "github.com/meshcapade/meshcapade-go/client/internal/errors"
)

// ErrMeshcapade matches every error produced by the SDK via errors.Is.
var ErrMeshcapade = sdkerrors.ErrMeshcapade

// Re-export the error taxonomy so callers can use errors.As without importing
// internal packages.
type (
	ValidationError       = sdkerrors.ValidationError
	AuthenticationError   = sdkerrors.AuthenticationError
	ResourceNotFoundError = sdkerrors.ResourceNotFoundError
	APIError              = sdkerrors.APIError
	TimeoutError          = sdkerrors.TimeoutError
)

// IsValidation reports whether err was rejected locally before any request.
func IsValidation(err error) bool { return sdkerrors.IsValidation(err) }

// IsAuthentication reports whether the API rejected the credentials.
func IsAuthentication(err error) bool { return sdkerrors.IsAuthentication(err) }

// IsNotFound reports whether the requested avatar does not exist.
func IsNotFound(err error) bool { return sdkerrors.IsNotFound(err) }

// IsAPI reports whether err is a generic API or transport failure.
func IsAPI(err error) bool { return sdkerrors.IsAPI(err) }

// IsTimeout reports whether Download gave up waiting for processing.
func IsTimeout(err error) bool { return sdkerrors.IsTimeout(err) }
