package vault

import (
	"context"

	"github.com/fcdesk/credvault/internal/server/models"
)

// Repository persists encrypted PII records keyed by FC profile id.
// Plaintext never reaches this layer.
type Repository interface {
	// Upsert stores the encrypted fields and the key version that sealed
	// them, overwriting any previous record for the same FC.
	Upsert(ctx context.Context, rec *models.VaultRecord) error

	// GetByFCIDs loads the records for the given ids in one query. Missing
	// ids are simply absent from the result.
	GetByFCIDs(ctx context.Context, fcIDs []string) ([]*models.VaultRecord, error)
}
