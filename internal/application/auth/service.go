package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aarsha-api/internal/domain"
	"github.com/aarsha-api/internal/pkg/identity"
	"github.com/aarsha-api/internal/pkg/otp"
	"github.com/aarsha-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

// OTPStore owns the single pending code per email.
type OTPStore interface {
	Upsert(ctx context.Context, email, code string, expiresAt int64) error
	// ConsumeIfValid atomically deletes the record iff it matches and is
	// unexpired at now. (false, nil) means no valid record; the store is
	// left untouched.
	ConsumeIfValid(ctx context.Context, email, candidate string, now int64) (bool, error)
}

// UserStore persists pending and verified accounts.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	MarkVerified(ctx context.Context, email string) error
}

// Mailer delivers the code out of band.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// TokenSigner mints the signed credential returned after verification.
type TokenSigner interface {
	Sign(email string) (string, error)
}

type Service interface {
	// Register validates the signup input, stores the pending account,
	// issues a fresh OTP (replacing any prior one for the email) and mails it.
	Register(ctx context.Context, req RegisterRequest) error
	// VerifyOTP consumes a matching unexpired code exactly once and returns
	// a signed token bound to the email. All failure causes collapse into
	// domain.ErrInvalidOTP.
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (token string, err error)
}

type ServiceDeps struct {
	OTPRepo  OTPStore
	UserRepo UserStore
	Mailer   Mailer
	Signer   TokenSigner
	OTPTTL   time.Duration
	Now      func() time.Time // defaults to time.Now
}

type service struct {
	otpRepo  OTPStore
	userRepo UserStore
	mailer   Mailer
	signer   TokenSigner
	otpTTL   time.Duration
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		otpRepo:  deps.OTPRepo,
		userRepo: deps.UserRepo,
		mailer:   deps.Mailer,
		signer:   deps.Signer,
		otpTTL:   deps.OTPTTL,
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	if err := validate.Struct(&req); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	email, err := identity.Normalize(req.Email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if err := s.userRepo.Put(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return err
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	expiresAt := now.Add(s.otpTTL).Unix()
	if err := s.otpRepo.Upsert(ctx, email, code, expiresAt); err != nil {
		return err
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(ctx, email, "Verify your email", body); err != nil {
		// The stored code stays usable; only delivery failed.
		slog.Warn("OTP mail delivery failed", "email", email, "err", err)
		return fmt.Errorf("send OTP mail: %w", domain.ErrDeliveryFailed)
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (string, error) {
	if err := validate.Struct(&req); err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	email, err := identity.Normalize(req.Email)
	if err != nil {
		return "", err
	}

	ok, err := s.otpRepo.ConsumeIfValid(ctx, email, req.OTP, s.now().Unix())
	if err != nil {
		return "", err
	}
	if !ok {
		// Uniform rejection: missing record, mismatch and expiry are
		// indistinguishable to the caller.
		return "", domain.ErrInvalidOTP
	}

	if err := s.userRepo.MarkVerified(ctx, email); err != nil {
		slog.Warn("could not mark user verified", "email", email, "err", err)
	}

	token, err := s.signer.Sign(email)
	if err != nil {
		return "", err
	}
	return token, nil
}
