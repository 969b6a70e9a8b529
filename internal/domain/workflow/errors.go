package workflow

import "errors"

var (
	// ErrConfiguration is returned when no matching workflow level
	// configuration exists for a request. Fatal for the transition; never
	// silently defaulted.
	ErrConfiguration = errors.New("no matching workflow configuration")

	// ErrPermission is returned when the acting role is not authorized for
	// the current workflow level and override does not apply.
	ErrPermission = errors.New("role not permitted at current workflow level")

	// ErrValidation is returned when transition input fails validation,
	// before any write occurs.
	ErrValidation = errors.New("invalid transition input")

	// ErrTerminated is returned when a transition is attempted on a request
	// whose workflow already reached final approval.
	ErrTerminated = errors.New("workflow already finalized")
)
