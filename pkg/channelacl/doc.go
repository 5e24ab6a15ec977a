// Package channelacl is a secondary grant store mapping (tenant, user) to a
// set of named channels. It is fully orthogonal to role-based permissions:
// features that gate on named channels consult this store directly, and a
// channel grant neither implies nor requires any role permission.
//
// Grant and Revoke are idempotent: re-granting and revoking a non-existent
// grant are both no-op successes. Grants have no expiry and survive role
// and permission changes independently.
//
// NewInMemStore returns the default process-wide implementation, safe for
// concurrent use; the storage/redis package provides a durable adapter
// behind the same Store interface.
package channelacl
