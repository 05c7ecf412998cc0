package classifier

import "errors"

var (
	// ErrInvalidDepartment is returned when a manual selection names a
	// department the registry does not know.
	ErrInvalidDepartment = errors.New("unknown department")

	// ErrManualNotAllowed is returned when manual selection is attempted
	// before any resolution confirmed the text is a legitimate grievance.
	ErrManualNotAllowed = errors.New("manual selection requires a validated grievance")
)
