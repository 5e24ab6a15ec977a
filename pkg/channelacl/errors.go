package channelacl

import "errors"

var (
	// ErrEmptyChannel is returned when a grant, revoke, or check names an
	// empty channel.
	ErrEmptyChannel = errors.New("channelacl.empty_channel")

	// ErrStoreUnavailable is returned by external-store adapters when the
	// backing store cannot be reached.
	ErrStoreUnavailable = errors.New("channelacl.store_unavailable")
)
