package membership

import "errors"

var (
	// ErrNoMembership is returned when a user has no membership of any
	// kind for the requested tenant. It signals "no access", not a
	// failure of the request itself.
	ErrNoMembership = errors.New("membership.no_membership")

	// ErrUserNotFound is returned by stores when the user does not exist.
	ErrUserNotFound = errors.New("membership.user_not_found")
)
