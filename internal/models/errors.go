package models

// ValidationError reports malformed or missing input at an interface boundary
type ValidationError struct {
	Field   string
	Details string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Details
}
