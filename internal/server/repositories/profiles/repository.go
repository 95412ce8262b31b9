package profiles

import (
	"context"
	"time"

	"github.com/fcdesk/credvault/internal/server/models"
)

// Repository persists FC onboarding profiles and their display-safe
// resident-number projections.
type Repository interface {
	GetByPhone(ctx context.Context, phone string) (*models.Profile, error)

	// CreateDraft inserts an empty draft profile for a phone that has no
	// profile yet (first OTP request or signup).
	CreateDraft(ctx context.Context, phone string) (*models.Profile, error)

	// ApplySignupInfo backfills the optional signup-form fields; empty
	// fields keep their stored values.
	ApplySignupInfo(ctx context.Context, id string, info models.SignupInfo) error

	MarkSignupCompleted(ctx context.Context, id string) error

	SetPhoneVerified(ctx context.Context, id string, at time.Time) error

	// SetIdentityProjection writes the masked display value, the lookup
	// hash, and the plaintext-free address columns, and flips
	// identity_completed. Must run in the same transaction as the vault
	// upsert.
	SetIdentityProjection(ctx context.Context, id, masked, hash, address, addressDetail string) error

	// ExistsByResidentHash reports whether another profile already carries
	// the same resident-number lookup hash.
	ExistsByResidentHash(ctx context.Context, hash, excludeID string) (bool, error)
}
