// Package lockout defines the shared failure-counter policy applied to both
// password verification and OTP verification. The counter is bounded to
// [0, MaxFails): reaching the threshold resets it to zero and sets
// locked_until, so "currently locked" is representable purely through the
// timestamp.
package lockout

import "time"

// Policy describes a failure-counter lockout window.
type Policy struct {
	// MaxFails is the number of consecutive failures that triggers a lock.
	MaxFails int

	// LockFor is how long the principal stays locked after the threshold.
	LockFor time.Duration
}

// Default is the policy every credential and OTP record uses.
var Default = Policy{MaxFails: 5, LockFor: 10 * time.Minute}

// Locked reports whether the record is currently locked.
func (p Policy) Locked(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && now.Before(*lockedUntil)
}

// Remaining returns how many attempts are left before a lock, given the
// stored counter value.
func (p Policy) Remaining(failedCount int) int {
	r := p.MaxFails - failedCount
	if r < 0 {
		return 0
	}
	return r
}

// Until returns the unlock timestamp for a lock starting at now.
func (p Policy) Until(now time.Time) time.Time {
	return now.Add(p.LockFor)
}
