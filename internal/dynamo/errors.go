package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidBody indicates a body with a non-positive radius or non-finite state.
	ErrInvalidBody = errors.New("dynamo: invalid body")

	// ErrInvalidBoundary indicates a boundary with a non-positive radius.
	ErrInvalidBoundary = errors.New("dynamo: invalid boundary")

	// ErrInvalidParams indicates a configuration value outside its valid range.
	ErrInvalidParams = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidStep indicates a non-positive timestep or substep count.
	ErrInvalidStep = errors.New("dynamo: invalid step (dt and substeps must be positive)")

	// ErrInvalidState indicates NaN or Inf in a body after a step.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrBodyOutside indicates a body whose radius leaves no room for it inside
	// the boundary. Position is not checked: a body placed outside the ring is
	// pulled back by the first boundary pass.
	ErrBodyOutside = errors.New("dynamo: body radius does not fit inside boundary")
)
