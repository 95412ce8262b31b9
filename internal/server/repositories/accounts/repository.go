package accounts

import (
	"context"

	"github.com/fcdesk/credvault/internal/server/models"
)

// Repository reads the out-of-band provisioned admin and manager accounts.
// Lookups return inactive rows too so callers can distinguish "inactive"
// from "unknown".
type Repository interface {
	GetAdminByPhone(ctx context.Context, phone string) (*models.Account, error)
	GetManagerByPhone(ctx context.Context, phone string) (*models.Account, error)
}
