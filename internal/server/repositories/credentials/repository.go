package credentials

import (
	"context"
	"time"

	"github.com/fcdesk/credvault/internal/server/models"
)

// FailureState is the lockout state returned by RegisterFailure after its
// atomic update: the counter after the increment-or-lock, and the lock
// expiry if the update triggered a lock. Locked is true exactly when this
// failure crossed the threshold.
type FailureState struct {
	FailedCount int
	LockedUntil *time.Time
	Locked      bool
}

// Repository persists password material and lockout state for every
// principal kind.
type Repository interface {
	Get(ctx context.Context, principalID string) (*models.Credential, error)

	// SetPassword upserts the hash, salt, and set-at timestamp, and clears
	// failure counters and any pending reset token.
	SetPassword(ctx context.Context, principalID, hashB64, saltB64 string, at time.Time) error

	// RegisterFailure applies the increment-or-lock transition in a single
	// conditional update so concurrent failures never under-count: if the
	// incremented counter reaches maxFails, the counter resets to 0 and
	// locked_until is set to until; otherwise the counter is stored and
	// locked_until cleared.
	RegisterFailure(ctx context.Context, principalID string, maxFails int, until time.Time) (*FailureState, error)

	// ClearFailures resets the counter and lock after a successful
	// verification.
	ClearFailures(ctx context.Context, principalID string) error

	// SetResetToken stores a pending password-reset code hash.
	SetResetToken(ctx context.Context, principalID, hashB64 string, expiresAt, sentAt time.Time) error
}
