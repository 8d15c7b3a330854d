package registration

import "time"

// Verification is a pending email verification attempt. Several may exist
// for the same email; each is addressed by its own ID.
type Verification struct {
	ID        string
	Email     string
	Code      string
	CreatedAt time.Time
}

// Expired reports whether the attempt is past its window at now. An attempt
// exactly ttl old is still valid.
func (v *Verification) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.CreatedAt) > ttl
}
