package merge

import "errors"

var (
	// ErrMissingPrimaryModule means the primary file was absent or had no
	// wrapping block; assembling without it would lose the nesting host.
	ErrMissingPrimaryModule = errors.New("primary module missing")

	// ErrPrimaryNotReopenable means the primary body does not end with the
	// closing brace the selected closing mode relies on.
	ErrPrimaryNotReopenable = errors.New("primary module body does not end with a closing brace")
)
