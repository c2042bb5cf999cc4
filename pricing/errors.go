package pricing

import "errors"

// Sentinel errors returned by the calculators. Handlers match them with
// errors.Is to choose a response.
var (
	// ErrDatabaseConnection means the store could not be reached at all.
	ErrDatabaseConnection = errors.New("unable to connect to the database")

	// ErrInsufficientData means the window held no usable sales history.
	ErrInsufficientData = errors.New("not enough historical sales data")
)
