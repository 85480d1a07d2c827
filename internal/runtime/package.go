package runtime

import (
	"fmt"

	"github.com/okra-platform/utilfn/internal/functions"
)

// Defaults used when a package does not set a namespace or version
const (
	DefaultNamespace = "default"
	DefaultVersion   = "v1"
)

// FunctionPackage encapsulates everything needed to run a function
type FunctionPackage struct {
	// Name is the function name, e.g. "utility"
	Name string

	// Namespace groups functions; defaults to "default"
	Namespace string

	// Version of the function; defaults to "v1"
	Version string

	// Dispatcher executes invocations
	Dispatcher *functions.Dispatcher
}

// NewFunctionPackage creates a new function package with validation
func NewFunctionPackage(name string, dispatcher *functions.Dispatcher) (*FunctionPackage, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	return &FunctionPackage{
		Name:       name,
		Namespace:  DefaultNamespace,
		Version:    DefaultVersion,
		Dispatcher: dispatcher,
	}, nil
}

// ActorID returns the fully qualified actor ID for the package.
// The format is: namespace.Name.version, e.g. "default.utility.v1"
func (p *FunctionPackage) ActorID() string {
	namespace := p.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	version := p.Version
	if version == "" {
		version = DefaultVersion
	}

	return fmt.Sprintf("%s.%s.%s", namespace, p.Name, version)
}
