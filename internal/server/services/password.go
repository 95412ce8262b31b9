package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/lockout"
	"github.com/fcdesk/credvault/internal/passhash"
	"github.com/fcdesk/credvault/internal/phone"
	"github.com/fcdesk/credvault/internal/server/models"
	"github.com/fcdesk/credvault/internal/server/repositories/repomanager"
	"github.com/fcdesk/credvault/internal/sms"
)

const (
	// ResetCooldown is the minimum interval between reset-code issuances.
	ResetCooldown = 60 * time.Second

	// ResetTTL is how long a reset code stays usable.
	ResetTTL = 15 * time.Minute
)

// passwordSpecials is the accepted special-character set.
const passwordSpecials = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// ValidPassword enforces the boundary policy: at least 8 characters, one
// letter, one digit, and one special from the fixed set.
func ValidPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var letter, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return letter && digit && special
}

// SetPasswordResult reports the initial password setup. ResidentID is the
// phone the client keeps as its session identity.
type SetPasswordResult struct {
	Code        string
	ResidentID  string
	DisplayName string
}

// ResetRequestResult reports a reset-code issuance.
type ResetRequestResult struct {
	Code     string
	Sent     bool
	TestMode bool
	TestCode string
}

// ResetPasswordResult reports a reset attempt.
type ResetPasswordResult struct {
	Code        string
	Remaining   int
	LockedUntil *time.Time
}

// PasswordService owns the password lifecycle: initial setup after phone
// verification, and the SMS-code reset flow.
type PasswordService struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	sender   sms.Sender
	policy   lockout.Policy
	testMode bool
	testCode string
	now      func() time.Time
}

func NewPasswordService(db *sql.DB, rm repomanager.RepositoryManager, sender sms.Sender, testMode bool, testCode string) *PasswordService {
	return &PasswordService{
		db:       db,
		rm:       rm,
		sender:   sender,
		policy:   lockout.Default,
		testMode: testMode,
		testCode: testCode,
		now:      time.Now,
	}
}

// SetPassword derives and stores the initial password for a verified FC
// phone, backfilling the profile with whatever signup-form fields arrived.
// confirm is optional; when present it must match.
func (s *PasswordService) SetPassword(ctx context.Context, rawPhone, password string, confirm *string, info models.SignupInfo) (*SetPasswordResult, error) {
	phoneNumber := phone.Normalize(rawPhone)
	if !phone.Valid(phoneNumber) {
		return &SetPasswordResult{Code: CodeInvalidPhone}, nil
	}
	if !ValidPassword(password) {
		return &SetPasswordResult{Code: CodeWeakPassword}, nil
	}
	if confirm != nil && *confirm != password {
		return &SetPasswordResult{Code: CodePasswordMismatch}, nil
	}

	accts := s.rm.Accounts(s.db)
	if _, err := accts.GetAdminByPhone(ctx, phoneNumber); err == nil {
		return &SetPasswordResult{Code: CodeAlreadyExists}, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if _, err := accts.GetManagerByPhone(ctx, phoneNumber); err == nil {
		return &SetPasswordResult{Code: CodeAlreadyExists}, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	profiles := s.rm.Profiles(s.db)
	profile, err := profiles.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// No profile means no OTP was ever requested for this phone,
			// so it cannot have been verified.
			return &SetPasswordResult{Code: CodePhoneNotVerified}, nil
		}
		return nil, err
	}
	if !profile.PhoneVerified {
		return &SetPasswordResult{Code: CodePhoneNotVerified}, nil
	}

	creds := s.rm.Credentials(s.db)
	cred, err := creds.Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if cred != nil && cred.PasswordSetAt != nil {
		return &SetPasswordResult{Code: CodeAlreadySet}, nil
	}

	salt := passhash.NewSalt()
	defer common.WipeByteArray(salt)
	hash, err := passhash.Derive(password, salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(hash)
	hashB64 := base64.StdEncoding.EncodeToString(hash)
	saltB64 := base64.StdEncoding.EncodeToString(salt)

	now := s.now()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Credentials(tx).SetPassword(ctx, profile.ID, hashB64, saltB64, now); err != nil {
			return err
		}
		if info != (models.SignupInfo{}) {
			if err := s.rm.Profiles(tx).ApplySignupInfo(ctx, profile.ID, info); err != nil {
				return err
			}
		}
		return s.rm.Profiles(tx).MarkSignupCompleted(ctx, profile.ID)
	})
	if err != nil {
		return nil, err
	}

	displayName := profile.Name
	if info.Name != "" {
		displayName = info.Name
	}

	return &SetPasswordResult{ResidentID: phoneNumber, DisplayName: displayName}, nil
}

// RequestReset issues a password-reset code for an FC that already has a
// password, and delivers it by SMS.
func (s *PasswordService) RequestReset(ctx context.Context, rawPhone string) (*ResetRequestResult, error) {
	phoneNumber := phone.Normalize(rawPhone)
	if !phone.Valid(phoneNumber) {
		return &ResetRequestResult{Code: CodeInvalidPhone}, nil
	}

	profile, err := s.rm.Profiles(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &ResetRequestResult{Code: CodeNotFound}, nil
		}
		return nil, err
	}

	creds := s.rm.Credentials(s.db)
	cred, err := creds.Get(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &ResetRequestResult{Code: CodeNotSet}, nil
		}
		return nil, err
	}
	if cred.PasswordSetAt == nil {
		return &ResetRequestResult{Code: CodeNotSet}, nil
	}

	now := s.now()
	if cred.ResetTokenSentAt != nil && now.Sub(*cred.ResetTokenSentAt) < ResetCooldown {
		return &ResetRequestResult{Code: CodeCooldown}, nil
	}

	code := s.testCode
	if !s.testMode {
		code, err = randomOtpCode()
		if err != nil {
			return nil, err
		}
	}

	if err := creds.SetResetToken(ctx, profile.ID, sha256Base64(code), now.Add(ResetTTL), now); err != nil {
		return nil, err
	}

	if s.testMode {
		return &ResetRequestResult{Sent: true, TestMode: true, TestCode: code}, nil
	}

	content := fmt.Sprintf("[FC 위촉] 비밀번호 재설정 코드: %s (15분 유효)", code)
	if err := s.sender.Send(ctx, phoneNumber, content); err != nil {
		return &ResetRequestResult{Code: CodeSMSSendFailed}, nil
	}

	return &ResetRequestResult{Sent: true}, nil
}

// ResetPassword verifies a reset code and replaces the password with a
// freshly salted hash. Wrong codes feed the shared lockout guard.
func (s *PasswordService) ResetPassword(ctx context.Context, rawPhone, token, newPassword string, confirm *string) (*ResetPasswordResult, error) {
	phoneNumber := phone.Normalize(rawPhone)
	if !phone.Valid(phoneNumber) {
		return &ResetPasswordResult{Code: CodeInvalidPhone}, nil
	}
	if token == "" {
		return &ResetPasswordResult{Code: CodeMissingToken}, nil
	}
	if !sixDigits.MatchString(token) {
		return &ResetPasswordResult{Code: CodeInvalidToken}, nil
	}
	if !ValidPassword(newPassword) {
		return &ResetPasswordResult{Code: CodeWeakPassword}, nil
	}
	if confirm != nil && *confirm != newPassword {
		return &ResetPasswordResult{Code: CodePasswordMismatch}, nil
	}

	profile, err := s.rm.Profiles(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &ResetPasswordResult{Code: CodeNotFound}, nil
		}
		return nil, err
	}

	creds := s.rm.Credentials(s.db)
	cred, err := creds.Get(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &ResetPasswordResult{Code: CodeInvalidToken}, nil
		}
		return nil, err
	}
	if cred.ResetTokenHash == nil || cred.ResetTokenExpiresAt == nil {
		return &ResetPasswordResult{Code: CodeInvalidToken}, nil
	}

	now := s.now()
	if s.policy.Locked(cred.LockedUntil, now) {
		return &ResetPasswordResult{Code: CodeLocked, LockedUntil: cred.LockedUntil}, nil
	}
	if now.After(*cred.ResetTokenExpiresAt) {
		return &ResetPasswordResult{Code: CodeExpiredToken}, nil
	}

	if !hashesEqual(sha256Base64(token), *cred.ResetTokenHash) {
		state, err := creds.RegisterFailure(ctx, profile.ID, s.policy.MaxFails, s.policy.Until(now))
		if err != nil {
			return nil, err
		}
		if state.Locked {
			return &ResetPasswordResult{Code: CodeLocked, LockedUntil: state.LockedUntil}, nil
		}
		return &ResetPasswordResult{Code: CodeInvalidToken, Remaining: s.policy.Remaining(state.FailedCount)}, nil
	}

	salt := passhash.NewSalt()
	defer common.WipeByteArray(salt)
	hash, err := passhash.Derive(newPassword, salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(hash)

	err = creds.SetPassword(ctx, profile.ID,
		base64.StdEncoding.EncodeToString(hash),
		base64.StdEncoding.EncodeToString(salt), now)
	if err != nil {
		return nil, err
	}

	return &ResetPasswordResult{}, nil
}
