package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrUnavailable covers backing-store I/O failures. Requests failing with
	// it left no partial state behind and are safe for the caller to retry.
	ErrUnavailable = errors.New("store unavailable")

	// ErrDeliveryFailed means the OTP record was stored but the mail could not
	// be sent. Surfaced distinctly so the caller knows the code exists.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrInvalidOTP is the uniform verification rejection. It deliberately does
	// not distinguish a wrong code from an expired one or a missing record.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
)
