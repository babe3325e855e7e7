package identity

import (
	"fmt"
	"strings"

	"github.com/aarsha-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Normalize turns a raw user-supplied email into the canonical key used to
// partition OTP, user and wishlist records: trimmed and case-folded.
// Rejects empty or malformed input.
func Normalize(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	if err := v.Var(email, "email"); err != nil {
		return "", fmt.Errorf("malformed email: %w", domain.ErrBadRequest)
	}
	return email, nil
}
