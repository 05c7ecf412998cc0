package domain

// Confidence is the classifier's self-reported certainty in its
// department assignment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceManual Confidence = "manual"
)

func ParseConfidence(s string) (Confidence, bool) {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceManual:
		return Confidence(s), true
	}
	return "", false
}

// ClassificationResult is produced fresh per distinct normalized input
// and never mutated after creation.
type ClassificationResult struct {
	IsValid           bool
	DepartmentID      string // empty when no department could be assigned
	Reason            string
	Confidence        Confidence
	ValidationMessage string // pass-through message when the service rejects the text
}

// Priority ranks how urgently a department's grievances are treated.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)
