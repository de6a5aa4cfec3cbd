package httpx

import (
	"errors"
	"net/http"

	"github.com/sitecrew/sitecrew/internal/shared"
)

// User-facing messages. Credential failures and reset-token failures are
// deliberately generic: unknown email, wrong password, and every token
// defect read the same, so responses reveal nothing about which accounts
// or tokens exist.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgMaintenance        = "Service is under maintenance. Please try again later."
	MsgResetRequested     = "If the email address exists, a reset link has been sent."
	MsgResetDone          = "Password has been reset."
	MsgResetInvalid       = "The reset link is invalid or has expired."
	MsgForbidden          = "You are not allowed to perform this action."
	MsgServerError        = "Something went wrong. Please try again."
)

// RespondError maps domain errors to wire-contract responses. Identity-
// revealing distinctions are collapsed before this point; only the
// maintenance and rate-limit outcomes stay contextually distinct.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Message(w, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, shared.ErrMaintenance):
		Message(w, http.StatusForbidden, MsgMaintenance)
	case errors.Is(err, shared.ErrRateLimited):
		Message(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
	case errors.Is(err, shared.ErrTokenInvalid),
		errors.Is(err, shared.ErrTokenUsed),
		errors.Is(err, shared.ErrTokenExpired):
		Message(w, http.StatusBadRequest, MsgResetInvalid)
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrUnknownRole):
		Message(w, http.StatusForbidden, MsgForbidden)
	case errors.Is(err, shared.ErrNotFound):
		Message(w, http.StatusNotFound, "Resource not found.")
	default:
		Message(w, http.StatusInternalServerError, MsgServerError)
	}
}
