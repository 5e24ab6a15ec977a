package consolidation

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedCandidateCount is returned when the candidate set does
	// not match the expected count exactly. The merge aborts before any
	// mutation.
	ErrUnexpectedCandidateCount = errors.New("consolidation.unexpected_candidate_count")

	// ErrCandidateNameMismatch is returned when the candidates do not
	// share a normalized name and are therefore not duplicates of one
	// logical business.
	ErrCandidateNameMismatch = errors.New("consolidation.candidate_name_mismatch")

	// ErrConsolidationInProgress is returned when a consolidation is
	// already running in this process. The procedure is not transactional
	// and must never interleave.
	ErrConsolidationInProgress = errors.New("consolidation.already_in_progress")

	// ErrCompanyNotFound is returned by stores when a company document
	// does not exist.
	ErrCompanyNotFound = errors.New("consolidation.company_not_found")
)

// Merge step identifiers reported by MergeStepError.
const (
	StepMigrateUsers   = "migrate_users"
	StepSaveSurvivor   = "save_survivor"
	StepDeleteAbsorbed = "delete_absorbed"
)

// MergeStepError identifies exactly which consolidation step failed.
// Rewrites applied by earlier steps are not rolled back; the procedure is
// written so a retry re-applies only what is still pending.
type MergeStepError struct {
	Step string
	Err  error
}

func (e *MergeStepError) Error() string {
	return fmt.Sprintf("consolidation step %q failed: %v", e.Step, e.Err)
}

func (e *MergeStepError) Unwrap() error { return e.Err }
