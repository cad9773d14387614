package booking

import "github.com/rideapp/ride-booking-system/internal/domain/models"

// CollisionFunc decides whether two directory users are the same person for
// the purposes of the self-booking rule. It is pluggable so stricter
// heuristics (name matching, device fingerprints) can be layered on without
// touching the lifecycle transitions.
type CollisionFunc func(a, b *models.User) bool

// SameIdentity is the default collision predicate: same user id, or same
// non-empty phone number registered under two accounts.
func SameIdentity(a, b *models.User) bool {
	if a == nil || b == nil {
		return false
	}
	if a.ID == b.ID {
		return true
	}
	return a.Phone != "" && a.Phone == b.Phone
}
