package services

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/passhash"
	"github.com/fcdesk/credvault/internal/server/models"
	"github.com/fcdesk/credvault/internal/server/repositories/credentials"
)

func storedCredential(t *testing.T, password string) *models.Credential {
	t.Helper()
	salt := passhash.NewSalt()
	hash, err := passhash.Derive(password, salt)
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	setAt := time.Now().Add(-time.Hour)
	return &models.Credential{
		PrincipalID:   "p-1",
		PasswordHash:  base64.StdEncoding.EncodeToString(hash),
		PasswordSalt:  base64.StdEncoding.EncodeToString(salt),
		PasswordSetAt: &setAt,
	}
}

func TestLogin_InvalidPhone(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewLoginService(db, &fakeRepoManager{})
	res, err := s.Login(context.Background(), "02012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeInvalidPhone {
		t.Fatalf("want invalid_phone, got %q", res.Code)
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewLoginService(db, &fakeRepoManager{})
	res, err := s.Login(context.Background(), "010-1234-5678", "")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeMissingPassword {
		t.Fatalf("want missing_password, got %q", res.Code)
	}
}

func TestLogin_InactiveAdmin(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		accts: &fakeAccountsRepo{adminOut: &models.Account{ID: "a-1", Active: false}},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeInactiveAdmin {
		t.Fatalf("want inactive_admin, got %q", res.Code)
	}
}

func TestLogin_FCNotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getErr: common.ErrorNotFound},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeNotFound {
		t.Fatalf("want not_found, got %q", res.Code)
	}
}

func TestLogin_NeedsPasswordSetup(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1", Name: "홍길동"}},
		creds:    &fakeCredsRepo{getErr: common.ErrorNotFound},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeNeedsPasswordSetup {
		t.Fatalf("want needs_password_setup, got %q", res.Code)
	}
}

func TestLogin_Locked(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	until := time.Now().Add(5 * time.Minute)
	cred := storedCredential(t, "Secret1!")
	cred.LockedUntil = &until

	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1"}},
		creds:    &fakeCredsRepo{getOut: cred},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeLocked || res.LockedUntil == nil {
		t.Fatalf("want locked with timestamp, got %+v", res)
	}
}

func TestLogin_ExpiredLockIsIgnored(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	past := time.Now().Add(-time.Minute)
	cred := storedCredential(t, "Secret1!")
	cred.LockedUntil = &past

	creds := &fakeCredsRepo{getOut: cred}
	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1", Name: "홍길동"}},
		creds:    creds,
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != "" {
		t.Fatalf("expected success after expired lock, got %q", res.Code)
	}
	if !creds.cleared {
		t.Fatalf("expected stale lock to be cleared")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1"}},
		creds: &fakeCredsRepo{
			getOut:      storedCredential(t, "Secret1!"),
			registerOut: &credentials.FailureState{FailedCount: 2},
		},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "wrong-password")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeInvalidPassword {
		t.Fatalf("want invalid_password, got %q", res.Code)
	}
	if res.Remaining != 3 {
		t.Fatalf("want remaining=3, got %d", res.Remaining)
	}
}

func TestLogin_WrongPasswordTriggersLock(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	until := time.Now().Add(10 * time.Minute)
	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1"}},
		creds: &fakeCredsRepo{
			getOut:      storedCredential(t, "Secret1!"),
			registerOut: &credentials.FailureState{FailedCount: 0, LockedUntil: &until, Locked: true},
		},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "wrong-password")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != CodeLocked || res.LockedUntil == nil {
		t.Fatalf("want locked with timestamp, got %+v", res)
	}
}

func TestLogin_FCSuccess(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		accts:    &fakeAccountsRepo{adminErr: common.ErrorNotFound, managerErr: common.ErrorNotFound},
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1", Name: "홍길동"}},
		creds:    &fakeCredsRepo{getOut: storedCredential(t, "Secret1!")},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "010-1234-5678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != "" || res.Role != models.RoleFC {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ResidentID != "01012345678" || res.DisplayName != "홍길동" {
		t.Fatalf("unexpected identity: %+v", res)
	}
}

func TestLogin_AdminSuccess(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		accts: &fakeAccountsRepo{adminOut: &models.Account{ID: "a-1", Name: "관리자", Active: true}},
		creds: &fakeCredsRepo{getOut: storedCredential(t, "Secret1!")},
	}
	s := NewLoginService(db, rm)
	res, err := s.Login(context.Background(), "01012345678", "Secret1!")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Code != "" || res.Role != models.RoleAdmin || res.DisplayName != "관리자" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
