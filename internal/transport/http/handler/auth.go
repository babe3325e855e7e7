package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aarsha-api/internal/application/auth"
	"github.com/aarsha-api/internal/domain"
)

// AuthHandler handles registration (OTP issuance) and OTP verification.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

// Register issues a fresh OTP for the email after validating the signup input.
// The code itself is never echoed in the response.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: "Invalid input"})
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: "Invalid input"})
		case errors.Is(err, domain.ErrDeliveryFailed):
			writeJSON(w, http.StatusInternalServerError, MessageEnvelope{Message: "Error sending OTP"})
		default:
			slog.Error("register failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, MessageEnvelope{Message: "Internal server error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{Status: http.StatusOK, Message: "OTP sent to your email"})
}

// VerifyOTP consumes the code and returns a signed token on success. Every
// rejection cause maps to the same response so a probing caller cannot tell
// a wrong code from an expired one or an unknown email.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: "Invalid input"})
		return
	}
	token, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOTP):
			writeJSON(w, http.StatusBadRequest, StatusEnvelope{Status: http.StatusBadRequest, Message: "Invalid or expired OTP"})
		case errors.Is(err, domain.ErrBadRequest):
			writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: "Invalid input"})
		default:
			slog.Error("verify OTP failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, MessageEnvelope{Message: "Internal server error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{
		Status:  http.StatusOK,
		Message: "OTP verified successfully",
		Token:   token,
	})
}
