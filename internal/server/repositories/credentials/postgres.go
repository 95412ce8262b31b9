package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, principalID string) (*models.Credential, error) {
	query :=
		`SELECT principal_id, password_hash, password_salt, password_set_at,
		        failed_count, locked_until,
		        reset_token_hash, reset_token_expires_at, reset_token_sent_at
		 FROM fc_credentials
		 WHERE principal_id = $1
		 `

	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, principalID).Scan(
		&c.PrincipalID, &c.PasswordHash, &c.PasswordSalt, &c.PasswordSetAt,
		&c.FailedCount, &c.LockedUntil,
		&c.ResetTokenHash, &c.ResetTokenExpiresAt, &c.ResetTokenSentAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) SetPassword(ctx context.Context, principalID, hashB64, saltB64 string, at time.Time) error {
	query :=
		`INSERT INTO fc_credentials (principal_id, password_hash, password_salt, password_set_at, failed_count, locked_until)
		 VALUES ($1, $2, $3, $4, 0, NULL)
		 ON CONFLICT (principal_id) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash,
		     password_salt = EXCLUDED.password_salt,
		     password_set_at = EXCLUDED.password_set_at,
		     failed_count = 0,
		     locked_until = NULL,
		     reset_token_hash = NULL,
		     reset_token_expires_at = NULL,
		     reset_token_sent_at = NULL
		 `

	_, err := r.db.ExecContext(ctx, query, principalID, hashB64, saltB64, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RegisterFailure performs the whole increment-or-lock transition inside one
// UPDATE so that two concurrent wrong-password requests cannot both read
// failed_count=4 and both write 5. The returned counter is the post-update
// value, bounded to [0, maxFails).
func (r *PostgresRepository) RegisterFailure(ctx context.Context, principalID string, maxFails int, until time.Time) (*FailureState, error) {
	query :=
		`UPDATE fc_credentials
		 SET failed_count = CASE WHEN failed_count + 1 >= $2 THEN 0 ELSE failed_count + 1 END,
		     locked_until = CASE WHEN failed_count + 1 >= $2 THEN $3 ELSE NULL END
		 WHERE principal_id = $1
		 RETURNING failed_count, locked_until
		 `

	s := &FailureState{}
	err := r.db.QueryRowContext(ctx, query, principalID, maxFails, until).Scan(&s.FailedCount, &s.LockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.Locked = s.LockedUntil != nil
	return s, nil
}

func (r *PostgresRepository) ClearFailures(ctx context.Context, principalID string) error {
	query :=
		`UPDATE fc_credentials
		 SET failed_count = 0, locked_until = NULL
		 WHERE principal_id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, principalID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, principalID, hashB64 string, expiresAt, sentAt time.Time) error {
	query :=
		`UPDATE fc_credentials
		 SET reset_token_hash = $2, reset_token_expires_at = $3, reset_token_sent_at = $4
		 WHERE principal_id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, principalID, hashB64, expiresAt, sentAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
