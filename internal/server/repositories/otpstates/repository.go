package otpstates

import (
	"context"
	"time"

	"github.com/fcdesk/credvault/internal/server/models"
)

// Repository persists one-time-code state keyed by phone number.
type Repository interface {
	Get(ctx context.Context, phone string) (*models.OtpState, error)

	// UpsertIssue stores a freshly issued code hash and resets the attempt
	// counter and any verification lock for the phone.
	UpsertIssue(ctx context.Context, phone, hashB64 string, expiresAt, sentAt time.Time) error

	// RegisterFailure applies the same increment-or-lock transition as the
	// password guard, in one conditional update.
	RegisterFailure(ctx context.Context, phone string, maxFails int, until time.Time) (*FailureState, error)

	// Clear consumes the code after a successful verification: the hash is
	// nulled so the same code cannot verify twice.
	Clear(ctx context.Context, phone string) error
}

// FailureState mirrors the credentials repository's failure result.
type FailureState struct {
	Attempts    int
	LockedUntil *time.Time
	Locked      bool
}
