package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) GetAdminByPhone(ctx context.Context, phone string) (*models.Account, error) {
	return r.getByPhone(ctx, "admin_accounts", phone)
}

func (r *PostgresRepository) GetManagerByPhone(ctx context.Context, phone string) (*models.Account, error) {
	return r.getByPhone(ctx, "manager_accounts", phone)
}

func (r *PostgresRepository) getByPhone(ctx context.Context, table, phone string) (*models.Account, error) {
	query := fmt.Sprintf(
		`SELECT id, phone, name, active FROM %s WHERE phone = $1`, table)

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, phone).Scan(&a.ID, &a.Phone, &a.Name, &a.Active)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}
