package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/lockout"
	"github.com/fcdesk/credvault/internal/phone"
	"github.com/fcdesk/credvault/internal/server/repositories/repomanager"
	"github.com/fcdesk/credvault/internal/sms"
)

const (
	// OtpCooldown is the minimum interval between issuances for one phone.
	OtpCooldown = 60 * time.Second

	// OtpTTL is how long an issued code stays verifiable.
	OtpTTL = 5 * time.Minute
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// randomOtpCode draws a uniform 6-digit code from crypto/rand.
func randomOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", 100000+n.Int64()), nil
}

// otpHash is base64(SHA-256(code || ":" || phone)). Binding the phone into
// the digest stops a code issued for one number verifying another.
func otpHash(code, phoneNumber string) string {
	return sha256Base64(code + ":" + phoneNumber)
}

// OtpRequestResult reports one issuance attempt. TestCode is populated only
// when the deployment runs in test mode.
type OtpRequestResult struct {
	Code            string
	AlreadyVerified bool
	Sent            bool
	TestMode        bool
	TestCode        string
	LockedUntil     *time.Time
}

// OtpVerifyResult reports one verification attempt.
type OtpVerifyResult struct {
	Code        string
	Remaining   int
	LockedUntil *time.Time
}

// OtpService issues and verifies the one-time codes gating phone ownership
// during signup. Verification failures share the lockout policy with
// password login, keyed by phone instead of principal.
type OtpService struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	sender   sms.Sender
	policy   lockout.Policy
	testMode bool
	testCode string
	now      func() time.Time
}

func NewOtpService(db *sql.DB, rm repomanager.RepositoryManager, sender sms.Sender, testMode bool, testCode string) *OtpService {
	return &OtpService{
		db:       db,
		rm:       rm,
		sender:   sender,
		policy:   lockout.Default,
		testMode: testMode,
		testCode: testCode,
		now:      time.Now,
	}
}

// Request issues a fresh code for the phone and hands it to the SMS
// collaborator. A first request also creates the draft profile the rest of
// the signup flow attaches to.
func (s *OtpService) Request(ctx context.Context, rawPhone string) (*OtpRequestResult, error) {
	phoneNumber := phone.Normalize(rawPhone)
	if !phone.Valid(phoneNumber) {
		return &OtpRequestResult{Code: CodeInvalidPhone}, nil
	}

	profiles := s.rm.Profiles(s.db)
	profile, err := profiles.GetByPhone(ctx, phoneNumber)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if profile != nil && profile.PhoneVerified {
		return &OtpRequestResult{AlreadyVerified: true}, nil
	}

	now := s.now()
	states := s.rm.OtpStates(s.db)
	state, err := states.Get(ctx, phoneNumber)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if state != nil {
		if s.policy.Locked(state.LockedUntil, now) {
			return &OtpRequestResult{Code: CodeLocked, LockedUntil: state.LockedUntil}, nil
		}
		if state.SentAt != nil && now.Sub(*state.SentAt) < OtpCooldown {
			return &OtpRequestResult{Code: CodeCooldown}, nil
		}
	}

	code := s.testCode
	if !s.testMode {
		code, err = randomOtpCode()
		if err != nil {
			return nil, err
		}
	}

	if profile == nil {
		if _, err := profiles.CreateDraft(ctx, phoneNumber); err != nil {
			return nil, err
		}
	}
	if err := states.UpsertIssue(ctx, phoneNumber, otpHash(code, phoneNumber), now.Add(OtpTTL), now); err != nil {
		return nil, err
	}

	if s.testMode {
		return &OtpRequestResult{Sent: true, TestMode: true, TestCode: code}, nil
	}

	content := fmt.Sprintf("[FC 위촉] 회원가입 인증 코드: %s (5분 유효)", code)
	if err := s.sender.Send(ctx, phoneNumber, content); err != nil {
		return &OtpRequestResult{Code: CodeSMSSendFailed}, nil
	}

	return &OtpRequestResult{Sent: true}, nil
}

// Verify checks the supplied code against the stored hash and, on success,
// marks the phone verified and consumes the code in one transaction.
func (s *OtpService) Verify(ctx context.Context, rawPhone, code string) (*OtpVerifyResult, error) {
	phoneNumber := phone.Normalize(rawPhone)
	if !phone.Valid(phoneNumber) {
		return &OtpVerifyResult{Code: CodeInvalidPhone}, nil
	}
	if !sixDigits.MatchString(code) {
		return &OtpVerifyResult{Code: CodeInvalidCode}, nil
	}

	profile, err := s.rm.Profiles(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &OtpVerifyResult{Code: CodeNotFound}, nil
		}
		return nil, err
	}

	states := s.rm.OtpStates(s.db)
	state, err := states.Get(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &OtpVerifyResult{Code: CodeNoCode}, nil
		}
		return nil, err
	}
	if state.VerificationHash == nil || state.ExpiresAt == nil {
		return &OtpVerifyResult{Code: CodeNoCode}, nil
	}

	now := s.now()
	if s.policy.Locked(state.LockedUntil, now) {
		return &OtpVerifyResult{Code: CodeLocked, LockedUntil: state.LockedUntil}, nil
	}
	if now.After(*state.ExpiresAt) {
		return &OtpVerifyResult{Code: CodeExpiredCode}, nil
	}

	if !hashesEqual(otpHash(code, phoneNumber), *state.VerificationHash) {
		failure, err := states.RegisterFailure(ctx, phoneNumber, s.policy.MaxFails, s.policy.Until(now))
		if err != nil {
			return nil, err
		}
		if failure.Locked {
			return &OtpVerifyResult{Code: CodeLocked, LockedUntil: failure.LockedUntil}, nil
		}
		return &OtpVerifyResult{Code: CodeInvalidCode, Remaining: s.policy.Remaining(failure.Attempts)}, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.OtpStates(tx).Clear(ctx, phoneNumber); err != nil {
			return err
		}
		return s.rm.Profiles(tx).SetPhoneVerified(ctx, profile.ID, now)
	})
	if err != nil {
		return nil, err
	}

	return &OtpVerifyResult{}, nil
}
