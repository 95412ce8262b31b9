package vault

import (
	"context"
	"fmt"

	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.VaultRecord) error {
	query :=
		`INSERT INTO fc_identity_vault (fc_id, resident_number_encrypted, address_encrypted, address_detail_encrypted, key_version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (fc_id) DO UPDATE
		 SET resident_number_encrypted = EXCLUDED.resident_number_encrypted,
		     address_encrypted = EXCLUDED.address_encrypted,
		     address_detail_encrypted = EXCLUDED.address_detail_encrypted,
		     key_version = EXCLUDED.key_version,
		     updated_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.FCID, rec.ResidentNumberEncrypted, rec.AddressEncrypted, rec.AddressDetailEncrypted, rec.KeyVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByFCIDs(ctx context.Context, fcIDs []string) ([]*models.VaultRecord, error) {
	query :=
		`SELECT fc_id, resident_number_encrypted, address_encrypted, address_detail_encrypted, key_version, updated_at
		 FROM fc_identity_vault
		 WHERE fc_id = ANY($1)
		 `

	rows, err := r.db.QueryContext(ctx, query, fcIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var recs []*models.VaultRecord
	for rows.Next() {
		rec := &models.VaultRecord{}
		err := rows.Scan(&rec.FCID, &rec.ResidentNumberEncrypted, &rec.AddressEncrypted, &rec.AddressDetailEncrypted, &rec.KeyVersion, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recs, nil
}
