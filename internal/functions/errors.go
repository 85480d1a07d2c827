package functions

import "errors"

// InvalidOperationMessage is the fixed error body returned for an unknown operation
const InvalidOperationMessage = "Invalid operation"

var (
	// ErrInvalidOperation is returned when the operation parameter names no known operation
	ErrInvalidOperation = errors.New("invalid operation")
)
