package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/server/models"
	"github.com/fcdesk/credvault/internal/server/repositories/accounts"
	"github.com/fcdesk/credvault/internal/server/repositories/credentials"
	"github.com/fcdesk/credvault/internal/server/repositories/otpstates"
	"github.com/fcdesk/credvault/internal/server/repositories/profiles"
	"github.com/fcdesk/credvault/internal/server/repositories/vault"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// --- fake repositories ---

type fakeProfilesRepo struct {
	getOut *models.Profile
	getErr error

	createDraftOut *models.Profile
	createDraftErr error
	draftCreated   bool

	applyErr     error
	appliedInfo  *models.SignupInfo
	markErr      error
	markedDone   bool
	verifyErr    error
	verifiedID   string
	projErr      error
	projMasked   string
	projHash     string
	projAddr     string
	projDetail   string
	existsOut    bool
	existsErr    error
	existsQuery  string
}

func (f *fakeProfilesRepo) GetByPhone(ctx context.Context, phone string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeProfilesRepo) CreateDraft(ctx context.Context, phone string) (*models.Profile, error) {
	f.draftCreated = true
	if f.createDraftErr != nil {
		return nil, f.createDraftErr
	}
	return f.createDraftOut, nil
}

func (f *fakeProfilesRepo) ApplySignupInfo(ctx context.Context, id string, info models.SignupInfo) error {
	f.appliedInfo = &info
	return f.applyErr
}

func (f *fakeProfilesRepo) MarkSignupCompleted(ctx context.Context, id string) error {
	f.markedDone = true
	return f.markErr
}

func (f *fakeProfilesRepo) SetPhoneVerified(ctx context.Context, id string, at time.Time) error {
	f.verifiedID = id
	return f.verifyErr
}

func (f *fakeProfilesRepo) SetIdentityProjection(ctx context.Context, id, masked, hash, address, addressDetail string) error {
	f.projMasked, f.projHash, f.projAddr, f.projDetail = masked, hash, address, addressDetail
	return f.projErr
}

func (f *fakeProfilesRepo) ExistsByResidentHash(ctx context.Context, hash, excludeID string) (bool, error) {
	f.existsQuery = hash
	return f.existsOut, f.existsErr
}

type fakeCredsRepo struct {
	getOut *models.Credential
	getErr error

	setErr       error
	setHash      string
	setSalt      string
	setAt        time.Time
	setPrincipal string

	registerOut *credentials.FailureState
	registerErr error

	clearErr    error
	cleared     bool

	resetErr       error
	resetTokenHash string
}

func (f *fakeCredsRepo) Get(ctx context.Context, principalID string) (*models.Credential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeCredsRepo) SetPassword(ctx context.Context, principalID, hashB64, saltB64 string, at time.Time) error {
	f.setPrincipal, f.setHash, f.setSalt, f.setAt = principalID, hashB64, saltB64, at
	return f.setErr
}

func (f *fakeCredsRepo) RegisterFailure(ctx context.Context, principalID string, maxFails int, until time.Time) (*credentials.FailureState, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeCredsRepo) ClearFailures(ctx context.Context, principalID string) error {
	f.cleared = true
	return f.clearErr
}

func (f *fakeCredsRepo) SetResetToken(ctx context.Context, principalID, hashB64 string, expiresAt, sentAt time.Time) error {
	f.resetTokenHash = hashB64
	return f.resetErr
}

type fakeOtpRepo struct {
	getOut *models.OtpState
	getErr error

	upsertErr  error
	issuedHash string

	registerOut *otpstates.FailureState
	registerErr error

	clearErr error
	cleared  bool
}

func (f *fakeOtpRepo) Get(ctx context.Context, phone string) (*models.OtpState, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeOtpRepo) UpsertIssue(ctx context.Context, phone, hashB64 string, expiresAt, sentAt time.Time) error {
	f.issuedHash = hashB64
	return f.upsertErr
}

func (f *fakeOtpRepo) RegisterFailure(ctx context.Context, phone string, maxFails int, until time.Time) (*otpstates.FailureState, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeOtpRepo) Clear(ctx context.Context, phone string) error {
	f.cleared = true
	return f.clearErr
}

type fakeVaultRepo struct {
	upsertErr error
	upserted  *models.VaultRecord

	getOut []*models.VaultRecord
	getErr error
}

func (f *fakeVaultRepo) Upsert(ctx context.Context, rec *models.VaultRecord) error {
	f.upserted = rec
	return f.upsertErr
}

func (f *fakeVaultRepo) GetByFCIDs(ctx context.Context, fcIDs []string) ([]*models.VaultRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeAccountsRepo struct {
	adminOut *models.Account
	adminErr error

	managerOut *models.Account
	managerErr error
}

func (f *fakeAccountsRepo) GetAdminByPhone(ctx context.Context, phone string) (*models.Account, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	return f.adminOut, nil
}

func (f *fakeAccountsRepo) GetManagerByPhone(ctx context.Context, phone string) (*models.Account, error) {
	if f.managerErr != nil {
		return nil, f.managerErr
	}
	return f.managerOut, nil
}

type fakeRepoManager struct {
	profiles *fakeProfilesRepo
	creds    *fakeCredsRepo
	otps     *fakeOtpRepo
	vault    *fakeVaultRepo
	accts    *fakeAccountsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository    { return m.profiles }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository {
	return m.creds
}
func (m *fakeRepoManager) OtpStates(db dbx.DBTX) otpstates.Repository { return m.otps }
func (m *fakeRepoManager) Vault(db dbx.DBTX) vault.Repository         { return m.vault }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository   { return m.accts }

// --- fake collaborators ---

type fakeSender struct {
	err     error
	to      string
	content string
	calls   int
}

func (f *fakeSender) Send(ctx context.Context, to string, content string) error {
	f.calls++
	f.to, f.content = to, content
	return f.err
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }
