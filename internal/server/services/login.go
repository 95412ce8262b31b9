// Package services contains server-side business logic: role-dispatched
// login, the OTP signup gate, password lifecycle, the PII vault write path,
// and the privileged batch decrypt.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/lockout"
	"github.com/fcdesk/credvault/internal/passhash"
	"github.com/fcdesk/credvault/internal/phone"
	"github.com/fcdesk/credvault/internal/server/models"
	"github.com/fcdesk/credvault/internal/server/repositories/repomanager"
)

// LoginResult reports the outcome of one login attempt. Code is empty on
// success; Remaining and LockedUntil accompany invalid_password and locked.
type LoginResult struct {
	Code        string
	Role        models.Role
	ResidentID  string
	DisplayName string
	Remaining   int
	LockedUntil *time.Time
}

// LoginService verifies passwords for admins, managers, and FCs against the
// shared credential table, with the lockout guard applied per principal.
type LoginService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	policy lockout.Policy
	now    func() time.Time
}

func NewLoginService(db *sql.DB, rm repomanager.RepositoryManager) *LoginService {
	return &LoginService{db: db, rm: rm, policy: lockout.Default, now: time.Now}
}

// principal is the resolved identity a phone maps to, independent of kind.
type principal struct {
	id          string
	role        models.Role
	displayName string
}

// resolvePrincipal tries the principal kinds in fixed order: admin, then
// manager, then FC profile. Inactive privileged accounts are reported as
// such rather than falling through to the FC table.
func (s *LoginService) resolvePrincipal(ctx context.Context, phoneNumber string) (*principal, string, error) {
	accts := s.rm.Accounts(s.db)

	admin, err := accts.GetAdminByPhone(ctx, phoneNumber)
	if err == nil {
		if !admin.Active {
			return nil, CodeInactiveAdmin, nil
		}
		return &principal{id: admin.ID, role: models.RoleAdmin, displayName: admin.Name}, "", nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", err
	}

	manager, err := accts.GetManagerByPhone(ctx, phoneNumber)
	if err == nil {
		if !manager.Active {
			return nil, CodeInactiveManager, nil
		}
		return &principal{id: manager.ID, role: models.RoleManager, displayName: manager.Name}, "", nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", err
	}

	profile, err := s.rm.Profiles(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, CodeNotFound, nil
		}
		return nil, "", err
	}
	return &principal{id: profile.ID, role: models.RoleFC, displayName: profile.Name}, "", nil
}

// Login verifies phone+password and returns the principal's role and display
// identity. ResidentID in the result is the login phone, which the client
// uses as its session identity.
func (s *LoginService) Login(ctx context.Context, rawPhone, password string) (*LoginResult, error) {
	phoneNumber := phone.Normalize(rawPhone)
	if !phone.Valid(phoneNumber) {
		return &LoginResult{Code: CodeInvalidPhone}, nil
	}
	if password == "" {
		return &LoginResult{Code: CodeMissingPassword}, nil
	}

	p, code, err := s.resolvePrincipal(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if code != "" {
		return &LoginResult{Code: code}, nil
	}

	creds := s.rm.Credentials(s.db)
	cred, err := creds.Get(ctx, p.id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &LoginResult{Code: CodeNeedsPasswordSetup}, nil
		}
		return nil, err
	}
	if cred.PasswordSetAt == nil {
		return &LoginResult{Code: CodeNeedsPasswordSetup}, nil
	}

	now := s.now()
	if s.policy.Locked(cred.LockedUntil, now) {
		return &LoginResult{Code: CodeLocked, LockedUntil: cred.LockedUntil}, nil
	}

	salt, err := base64.StdEncoding.DecodeString(cred.PasswordSalt)
	if err != nil {
		return nil, common.ErrorInternal
	}
	stored, err := base64.StdEncoding.DecodeString(cred.PasswordHash)
	if err != nil {
		return nil, common.ErrorInternal
	}

	match, err := passhash.Verify(password, salt, stored)
	if err != nil {
		return nil, err
	}
	if !match {
		state, err := creds.RegisterFailure(ctx, p.id, s.policy.MaxFails, s.policy.Until(now))
		if err != nil {
			return nil, err
		}
		if state.Locked {
			return &LoginResult{Code: CodeLocked, LockedUntil: state.LockedUntil}, nil
		}
		return &LoginResult{Code: CodeInvalidPassword, Remaining: s.policy.Remaining(state.FailedCount)}, nil
	}

	if cred.FailedCount > 0 || cred.LockedUntil != nil {
		if err := creds.ClearFailures(ctx, p.id); err != nil {
			return nil, err
		}
	}

	return &LoginResult{
		Role:        p.role,
		ResidentID:  phoneNumber,
		DisplayName: p.displayName,
	}, nil
}

// hashesEqual compares two base64 digests in constant time.
func hashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func sha256Base64(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base64.StdEncoding.EncodeToString(sum[:])
}
