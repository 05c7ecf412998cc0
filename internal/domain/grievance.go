package domain

import "time"

// GrievanceStatus is the lifecycle state of a grievance. The only legal
// transition is pending -> completed.
type GrievanceStatus string

const (
	StatusPending   GrievanceStatus = "pending"
	StatusCompleted GrievanceStatus = "completed"
)

type Grievance struct {
	ID           int64
	Owner        string // user identity the record belongs to
	Text         string
	DepartmentID string
	LocationInfo string // free-form "area, district"; optional
	ImageRef     string // filename or URL; optional
	Status       GrievanceStatus
	Reviewed     bool
	CreatedAt    time.Time
	CompletedAt  time.Time // zero until completed
	UpdatedAt    time.Time
}

func (g Grievance) Completed() bool {
	return g.Status == StatusCompleted
}

// GrievanceMeta carries the optional fields the submission form collects
// alongside the grievance text.
type GrievanceMeta struct {
	LocationInfo string
	ImageRef     string
}

type Review struct {
	ID              string
	GrievanceID     int64
	Owner           string
	Rating          int // 1..5
	Comment         string
	HelpfulVotes    int
	NotHelpfulVotes int
	CreatedAt       time.Time
}

// VoteKind selects which counter Vote increments.
type VoteKind string

const (
	VoteHelpful    VoteKind = "helpful"
	VoteNotHelpful VoteKind = "not_helpful"
)

// UserStats is derived in full from the owner's grievance and review
// collections after every mutation. There is no incremental update path.
type UserStats struct {
	TotalGrievances     int
	CompletedGrievances int
	PendingGrievances   int
	TotalReviews        int
	AverageRating       float64
}
