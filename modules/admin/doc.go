// Package admin exposes the HTTP surface of the access subsystem: the
// duplicate-tenant diagnosis and consolidation operations, effective
// permission lookups, and the channel grant management endpoints.
//
// The package assumes an authentication layer in front of it that
// resolves the session and places the caller into the request context
// via WithCaller. Routes return 401 without a caller; consolidation
// routes additionally require the technician system role and the
// tenant-scoped routes verify the caller's access to the tenant in the
// URL.
package admin
