package billing

import "errors"

var (
	// ErrAmbiguousProductIdentity means a usage line has neither a service
	// code nor a product name, so it cannot be grouped or matched against
	// discount rates. The containing aggregation fails rather than grouping
	// the line under a blank key.
	ErrAmbiguousProductIdentity = errors.New("usage line has no service code and no product name")

	// ErrUndefinedBlendRate means the undiscounted total in scope is zero,
	// so no blended rate exists. Callers must not treat this as a 0% rate.
	ErrUndefinedBlendRate = errors.New("blended rate undefined: no positive undiscounted cost in scope")
)
