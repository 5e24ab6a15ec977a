// Package consolidation repairs duplicate tenant records created by a
// registration bug: two company documents representing the same logical
// business, differing only in id.
//
// DiagnoseDuplicates is the read-only half: it reports candidates
// matching a name pattern, how each is referenced from user documents, and
// which record a merge would keep. Consolidate performs the merge: the
// oldest record survives, every user reference (legacy company field,
// membership list entries, current tenant) is rewritten to it, member
// rosters are unioned without duplicates, empty descriptive attributes are
// filled from the absorbed records, and the absorbed documents are deleted
// last.
//
// Two deliberate limitations, inherited from the data model:
//
//   - The merge is not transactional. A failed step stops the procedure
//     before deletion and surfaces as a MergeStepError naming the step;
//     applied rewrites stay applied. Each rewrite is expressed as "point
//     at the survivor", so rerunning the procedure completes the repair
//     without double-applying anything.
//
//   - Role ids are preserved, not remapped. Migrated users keep
//     referencing roles scoped to the absorbed tenant; those ids are
//     reported in MergeResult.OrphanedRoleIDs for manual follow-up.
//
// Consolidate refuses concurrent invocation within the process and is
// intended as a single-operator administrative action, never part of the
// request hot path.
package consolidation
