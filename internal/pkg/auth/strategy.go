package auth

import "time"

// Strategy issues and verifies bearer tokens that carry a user id.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes token issuance. Zero values select defaults.
type Options struct {
	TTL time.Duration
	// Now overrides the clock used for expiry.
	Now func() time.Time
}
