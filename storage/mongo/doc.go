// Package mongo implements the persistence ports of the membership,
// permission, and consolidation packages on the document store.
//
// Documents keep ids as canonical uuid strings and mirror the dual
// membership representation on the user document: the legacy company and
// role fields alongside the membership list. The consolidation queries
// (legacy company, membership tenant, current tenant) each target one of
// the three places a user document can reference a tenant.
//
// Saves are upserting replaces; UpdatedAt is stamped on every save.
package mongo
