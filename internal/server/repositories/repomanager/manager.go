package repomanager

import (
	"context"
	"database/sql"

	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/server/repositories/accounts"
	"github.com/fcdesk/credvault/internal/server/repositories/credentials"
	"github.com/fcdesk/credvault/internal/server/repositories/otpstates"
	"github.com/fcdesk/credvault/internal/server/repositories/profiles"
	"github.com/fcdesk/credvault/internal/server/repositories/vault"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	OtpStates(db dbx.DBTX) otpstates.Repository
	Vault(db dbx.DBTX) vault.Repository
	Accounts(db dbx.DBTX) accounts.Repository
}
