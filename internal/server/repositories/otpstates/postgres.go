package otpstates

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

func (r *PostgresRepository) Get(ctx context.Context, phone string) (*models.OtpState, error) {
	query :=
		`SELECT phone, verification_hash, expires_at, sent_at, attempts, locked_until
		 FROM otp_states
		 WHERE phone = $1
		 `

	s := &models.OtpState{}
	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&s.Phone, &s.VerificationHash, &s.ExpiresAt, &s.SentAt, &s.Attempts, &s.LockedUntil,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) UpsertIssue(ctx context.Context, phone, hashB64 string, expiresAt, sentAt time.Time) error {
	query :=
		`INSERT INTO otp_states (phone, verification_hash, expires_at, sent_at, attempts, locked_until)
		 VALUES ($1, $2, $3, $4, 0, NULL)
		 ON CONFLICT (phone) DO UPDATE
		 SET verification_hash = EXCLUDED.verification_hash,
		     expires_at = EXCLUDED.expires_at,
		     sent_at = EXCLUDED.sent_at,
		     attempts = 0,
		     locked_until = NULL
		 `

	_, err := r.db.ExecContext(ctx, query, phone, hashB64, expiresAt, sentAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RegisterFailure(ctx context.Context, phone string, maxFails int, until time.Time) (*FailureState, error) {
	query :=
		`UPDATE otp_states
		 SET attempts = CASE WHEN attempts + 1 >= $2 THEN 0 ELSE attempts + 1 END,
		     locked_until = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE NULL END
		 WHERE phone = $1
		 RETURNING attempts, locked_until
		 `

	s := &FailureState{}
	err := r.db.QueryRowContext(ctx, query, phone, maxFails, until).Scan(&s.Attempts, &s.LockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.Locked = s.LockedUntil != nil
	return s, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, phone string) error {
	query :=
		`UPDATE otp_states
		 SET verification_hash = NULL, attempts = 0, locked_until = NULL
		 WHERE phone = $1
		 `

	_, err := r.db.ExecContext(ctx, query, phone)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
