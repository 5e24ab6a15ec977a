// Package redis implements the channel ACL store on redis, one set per
// (tenant, user) pair. It is a drop-in channelacl.Store for deployments
// that need grants to survive process restarts; the in-memory store
// remains the default.
package redis
