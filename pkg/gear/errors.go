package gear

import "fmt"

// ValidationError represents an out-of-range or inconsistent input
// parameter. It is only ever raised by Derive; downstream components
// trust an already-derived ParameterSet.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DegenerateError reports a generated curve or profile that is empty,
// backtracking, or otherwise unusable as a sketch region. It is raised
// before any kernel call is attempted, so no partial kernel state exists.
type DegenerateError struct {
	What   string
	Reason string
}

func (e DegenerateError) Error() string {
	return fmt.Sprintf("degenerate %s: %s", e.What, e.Reason)
}
