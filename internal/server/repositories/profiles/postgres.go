package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

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

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.Profile, error) {
	query :=
		`SELECT id, phone, name, affiliation, recommender, email, carrier,
		        address, address_detail, status, phone_verified, phone_verified_at,
		        signup_completed, identity_completed, resident_id_masked, resident_id_hash, created_at
		 FROM fc_profiles
		 WHERE phone = $1
		 `

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&p.ID, &p.Phone, &p.Name, &p.Affiliation, &p.Recommender, &p.Email, &p.Carrier,
		&p.Address, &p.AddressDetail, &p.Status, &p.PhoneVerified, &p.PhoneVerifiedAt,
		&p.SignupCompleted, &p.IdentityCompleted, &p.ResidentIDMasked, &p.ResidentIDHash, &p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) CreateDraft(ctx context.Context, phone string) (*models.Profile, error) {
	query :=
		`INSERT INTO fc_profiles (id, phone, status)
		 VALUES ($1, $2, 'draft')
		 RETURNING id, created_at
		 `

	p := &models.Profile{Phone: phone, Status: "draft"}
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), phone).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ApplySignupInfo(ctx context.Context, id string, info models.SignupInfo) error {
	query :=
		`UPDATE fc_profiles
		 SET name        = COALESCE(NULLIF($2, ''), name),
		     affiliation = COALESCE(NULLIF($3, ''), affiliation),
		     recommender = COALESCE(NULLIF($4, ''), recommender),
		     email       = COALESCE(NULLIF($5, ''), email),
		     carrier     = COALESCE(NULLIF($6, ''), carrier)
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id, info.Name, info.Affiliation, info.Recommender, info.Email, info.Carrier)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkSignupCompleted(ctx context.Context, id string) error {
	query := `UPDATE fc_profiles SET signup_completed = true WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetPhoneVerified(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE fc_profiles
		 SET phone_verified = true, phone_verified_at = $2
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetIdentityProjection(ctx context.Context, id, masked, hash, address, addressDetail string) error {
	query :=
		`UPDATE fc_profiles
		 SET resident_id_masked = $2,
		     resident_id_hash = $3,
		     address = $4,
		     address_detail = $5,
		     identity_completed = true
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query, id, masked, hash, address, addressDetail)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ExistsByResidentHash(ctx context.Context, hash, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		     SELECT 1 FROM fc_profiles WHERE resident_id_hash = $1 AND id <> $2
		 )`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, hash, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
