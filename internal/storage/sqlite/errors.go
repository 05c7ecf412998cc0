package sqlite

import "errors"

// State-violation errors indicate a caller-side logic bug (double
// submission, stale UI state) and are surfaced hard rather than masked.
var (
	ErrNotFound           = errors.New("grievance not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrInvalidDepartment  = errors.New("department does not resolve in the registry")
	ErrAlreadyCompleted   = errors.New("grievance is already completed")
	ErrNotCompleted       = errors.New("grievance is not completed")
	ErrAlreadyReviewed    = errors.New("grievance is already reviewed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidVoteKind    = errors.New("vote kind must be helpful or not_helpful")
	ErrEmptyGrievanceText = errors.New("grievance text is empty")
)
