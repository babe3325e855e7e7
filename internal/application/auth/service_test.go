package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aarsha-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Upsert(ctx context.Context, email, code string, expiresAt int64) error {
	return m.Called(ctx, email, code, expiresAt).Error(0)
}
func (m *mockOTPStore) ConsumeIfValid(ctx context.Context, email, candidate string, now int64) (bool, error) {
	args := m.Called(ctx, email, candidate, now)
	return args.Bool(0), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) MarkVerified(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newTestService(os OTPStore, us UserStore, ml Mailer, sg TokenSigner, now func() time.Time) Service {
	return NewService(ServiceDeps{
		OTPRepo:  os,
		UserRepo: us,
		Mailer:   ml,
		Signer:   sg,
		OTPTTL:   5 * time.Minute,
		Now:      now,
	})
}

// --- Register ---

func TestRegister_MalformedEmail_ReturnsBadRequest(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)
	err := svc.Register(context.Background(), RegisterRequest{
		Email:           "not-an-email",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegister_MismatchedConfirmation_ReturnsBadRequest(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)
	err := svc.Register(context.Background(), RegisterRequest{
		Email:           "user@example.com",
		Password:        "password123",
		ConfirmPassword: "password456",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegister_MissingPassword_ReturnsBadRequest(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)
	err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegister_HappyPath_StoresCodeAndMailsIt(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	wantDeadline := now.Add(5 * time.Minute).Unix()

	var issued string
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "user@example.com" && !u.Verified && u.PasswordHash != "" && u.PasswordHash != "password123"
	})).Return(nil)
	os.On("Upsert", mock.Anything, "user@example.com", mock.MatchedBy(func(code string) bool {
		issued = code
		return regexp.MustCompile(`^\d{6}$`).MatchString(code)
	}), wantDeadline).Return(nil)
	ml.On("SendEmail", mock.Anything, "user@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
		return issued != "" && strings.Contains(body, issued)
	})).Return(nil)

	svc := newTestService(os, us, ml, nil, func() time.Time { return now })
	err := svc.Register(context.Background(), RegisterRequest{
		// normalization trims and case-folds before anything is stored
		Email:           "  User@Example.COM ",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	require.NoError(t, err)
	us.AssertExpectations(t)
	os.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRegister_StoreFailure_NoMailSent(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	os.On("Upsert", mock.Anything, "user@example.com", mock.Anything, mock.Anything).
		Return(domain.ErrUnavailable)

	svc := newTestService(os, us, ml, nil, nil)
	err := svc.Register(context.Background(), RegisterRequest{
		Email:           "user@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_MailFailure_ReportsDeliveryFailed(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	os.On("Upsert", mock.Anything, "user@example.com", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, "user@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused"))

	svc := newTestService(os, us, ml, nil, nil)
	err := svc.Register(context.Background(), RegisterRequest{
		Email:           "user@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	// The record was stored before delivery failed; the caller learns
	// delivery failed, distinctly from validation.
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeliveryFailed))
	os.AssertExpectations(t)
}

// --- VerifyOTP ---

func TestVerifyOTP_MissingFields_ReturnsBadRequest(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "user@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.VerifyOTP(context.Background(), VerifyOTPRequest{OTP: "482913"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerifyOTP_NoValidRecord_UniformRejection(t *testing.T) {
	os := &mockOTPStore{}
	// The store cannot tell us whether the record was absent, mismatched or
	// expired — and neither can the caller.
	os.On("ConsumeIfValid", mock.Anything, "user@example.com", "000000", mock.Anything).
		Return(false, nil)

	svc := newTestService(os, nil, nil, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com",
		OTP:   "000000",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerifyOTP_StoreFailure(t *testing.T) {
	os := &mockOTPStore{}
	os.On("ConsumeIfValid", mock.Anything, "user@example.com", "482913", mock.Anything).
		Return(false, domain.ErrUnavailable)

	svc := newTestService(os, nil, nil, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com",
		OTP:   "482913",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.False(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerifyOTP_HappyPath_TokenBoundToNormalizedEmail(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	sg := &mockSigner{}

	os.On("ConsumeIfValid", mock.Anything, "user@example.com", "482913", mock.Anything).
		Return(true, nil)
	us.On("MarkVerified", mock.Anything, "user@example.com").Return(nil)
	sg.On("Sign", "user@example.com").Return("signed.jwt.token", nil)

	svc := newTestService(os, us, nil, sg, nil)
	token, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: " User@example.com ",
		OTP:   "482913",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", token)
	os.AssertExpectations(t)
	us.AssertExpectations(t)
	sg.AssertExpectations(t)
}

func TestVerifyOTP_MarkVerifiedFailure_StillReturnsToken(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	sg := &mockSigner{}

	os.On("ConsumeIfValid", mock.Anything, "user@example.com", "482913", mock.Anything).
		Return(true, nil)
	us.On("MarkVerified", mock.Anything, "user@example.com").Return(domain.ErrUnavailable)
	sg.On("Sign", "user@example.com").Return("signed.jwt.token", nil)

	svc := newTestService(os, us, nil, sg, nil)
	token, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com",
		OTP:   "482913",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", token)
}

// --- lifecycle properties, against a reference in-memory store ---

// memOTPStore implements the one-record-per-email, atomic-consume contract
// in memory, so the full issuance/verification lifecycle can be exercised
// end to end without DynamoDB.
type memOTPStore struct {
	mu      sync.Mutex
	records map[string]struct {
		code      string
		expiresAt int64
	}
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{records: make(map[string]struct {
		code      string
		expiresAt int64
	})}
}

func (s *memOTPStore) Upsert(_ context.Context, email, code string, expiresAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = struct {
		code      string
		expiresAt int64
	}{code, expiresAt}
	return nil
}

func (s *memOTPStore) ConsumeIfValid(_ context.Context, email, candidate string, now int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok || rec.code != candidate || now >= rec.expiresAt {
		return false, nil
	}
	delete(s.records, email)
	return true, nil
}

// lifecycleHarness issues codes through the real workflow and captures each
// mailed code from the message body.
type lifecycleHarness struct {
	svc   Service
	mu    sync.Mutex
	codes []string
	now   time.Time
}

func (h *lifecycleHarness) issued() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.codes...)
}

func newLifecycleHarness(t *testing.T, store OTPStore) *lifecycleHarness {
	t.Helper()
	h := &lifecycleHarness{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	us := &mockUserStore{}
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	us.On("MarkVerified", mock.Anything, mock.Anything).Return(nil)

	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body := args.String(3)
			code := regexp.MustCompile(`\d{6}`).FindString(body)
			assert.NotEmpty(t, code)
			h.mu.Lock()
			h.codes = append(h.codes, code)
			h.mu.Unlock()
		}).Return(nil)

	sg := &mockSigner{}
	sg.On("Sign", mock.Anything).Return("signed.jwt.token", nil)

	h.svc = newTestService(store, us, ml, sg, func() time.Time { return h.now })
	return h
}

func (h *lifecycleHarness) register(t *testing.T, email string) string {
	t.Helper()
	before := len(h.issued())
	require.NoError(t, h.svc.Register(context.Background(), RegisterRequest{
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
	}))
	codes := h.issued()
	require.Len(t, codes, before+1)
	return codes[before]
}

func TestLifecycle_CodeIsSingleUse(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())
	code := h.register(t, "user@example.com")

	token, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: code,
	})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", token)

	// Replaying the identical request must fail.
	_, err = h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: code,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestLifecycle_ReissueReplacesPriorCode(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())
	first := h.register(t, "user@example.com")
	second := h.register(t, "user@example.com")

	if first != second {
		_, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
			Email: "user@example.com", OTP: first,
		})
		require.Error(t, err, "superseded code must not verify")
		assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
	}

	_, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: second,
	})
	require.NoError(t, err, "most recently issued code must verify")
}

func TestLifecycle_WrongCodeLeavesRecordIntact(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())
	code := h.register(t, "user@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: wrong,
	})
	require.Error(t, err)

	// The failed attempt must not have consumed the pending record.
	_, err = h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: code,
	})
	require.NoError(t, err)
}

func TestLifecycle_ExpiryBoundary(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())
	code := h.register(t, "user@example.com")

	// One second before the deadline the code still verifies.
	h.now = h.now.Add(5*time.Minute - time.Second)
	_, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: code,
	})
	require.NoError(t, err)

	// At exactly the deadline it must not.
	code = h.register(t, "user@example.com")
	h.now = h.now.Add(5 * time.Minute)
	_, err = h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "user@example.com", OTP: code,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestLifecycle_ConcurrentReplay_ExactlyOneSucceeds(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())
	code := h.register(t, "user@example.com")

	const attempts = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
				Email: "user@example.com", OTP: code,
			})
			if err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "atomic consume must admit exactly one verification")
}

func TestLifecycle_ConcurrentIssuance_ExactlyOneCodeVerifies(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- h.svc.Register(context.Background(), RegisterRequest{
				Email:           "user@example.com",
				Password:        "password123",
				ConfirmPassword: "password123",
			})
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
	codes := h.issued()
	require.Len(t, codes, 2)

	// The store holds whichever record committed last; verifying both issued
	// codes must admit exactly one.
	successes := 0
	for _, code := range codes {
		if _, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
			Email: "user@example.com", OTP: code,
		}); err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}

func TestLifecycle_VerifyWithoutIssuance(t *testing.T) {
	h := newLifecycleHarness(t, newMemOTPStore())

	_, err := h.svc.VerifyOTP(context.Background(), VerifyOTPRequest{
		Email: "nobody@example.com", OTP: "482913",
	})
	require.Error(t, err)
	// Same rejection as a wrong or expired code.
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}
