// Package functions implements the utility function: a stateless dispatcher
// that maps request parameters to a JSON result.
package functions

// Operation identifies which utility the dispatcher runs
type Operation int

const (
	// OperationUnknown is any operation name that is not recognized
	OperationUnknown Operation = iota
	OperationReverse
	OperationRandom
	OperationTimestamp
)

// Parameter names read from the query string
const (
	ParamOperation = "operation"
	ParamText      = "text"
	ParamMin       = "min"
	ParamMax       = "max"
	ParamFormat    = "format"
)

var operationNames = map[string]Operation{
	"reverse":   OperationReverse,
	"random":    OperationRandom,
	"timestamp": OperationTimestamp,
}

// ParseOperation maps an operation name to its Operation. Names are
// case-sensitive; anything unrecognized is OperationUnknown.
func ParseOperation(name string) Operation {
	if op, ok := operationNames[name]; ok {
		return op
	}
	return OperationUnknown
}

func (o Operation) String() string {
	switch o {
	case OperationReverse:
		return "reverse"
	case OperationRandom:
		return "random"
	case OperationTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}
