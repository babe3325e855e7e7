package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aarsha-api/internal/application/auth"
	"github.com/aarsha-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req auth.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthService) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegister_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	rec := postJSON(t, h.Register, "/register", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input", decodeBody(t, rec)["message"])
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, mock.Anything).Return(domain.ErrBadRequest)

	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/register",
		`{"email":"user@example.com","password":"pw","confirmPassword":"other"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input", decodeBody(t, rec)["message"])
}

func TestRegister_DeliveryFailure(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, mock.Anything).Return(domain.ErrDeliveryFailed)

	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/register",
		`{"email":"user@example.com","password":"password123","confirmPassword":"password123"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error sending OTP", decodeBody(t, rec)["message"])
}

func TestRegister_Success_NeverEchoesCode(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, auth.RegisterRequest{
		Email:           "user@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}).Return(nil)

	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/register",
		`{"email":"user@example.com","password":"password123","confirmPassword":"password123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(200), body["status"])
	assert.NotContains(t, body, "otp")
	assert.NotContains(t, body, "token")
	svc.AssertExpectations(t)
}

func TestVerifyOTP_UniformRejection(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return("", domain.ErrInvalidOTP)

	h := NewAuthHandler(svc)
	rec := postJSON(t, h.VerifyOTP, "/verify-otp",
		`{"email":"user@example.com","otp":"000000"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "Invalid or expired OTP", body["message"])
}

func TestVerifyOTP_Success_ReturnsToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, auth.VerifyOTPRequest{
		Email: "user@example.com",
		OTP:   "482913",
	}).Return("signed.jwt.token", nil)

	h := NewAuthHandler(svc)
	rec := postJSON(t, h.VerifyOTP, "/verify-otp",
		`{"email":"user@example.com","otp":"482913"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(200), body["status"])
	assert.Equal(t, "signed.jwt.token", body["token"])
	svc.AssertExpectations(t)
}

func TestVerifyOTP_StoreFailure_GenericError(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return("", domain.ErrUnavailable)

	h := NewAuthHandler(svc)
	rec := postJSON(t, h.VerifyOTP, "/verify-otp",
		`{"email":"user@example.com","otp":"482913"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["message"])
}
