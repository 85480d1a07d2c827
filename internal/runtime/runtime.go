package runtime

import (
	"context"

	"github.com/tochemey/goakt/v2/actors"
)

// Runtime manages the actor system and function deployments
type Runtime interface {
	// Start initializes the runtime and starts the actor system
	Start(ctx context.Context) error

	// Deploy deploys a function package to the runtime
	// Returns the actor ID (fully qualified function name)
	Deploy(ctx context.Context, pkg *FunctionPackage) (string, error)

	// Undeploy removes a function from the runtime
	Undeploy(ctx context.Context, actorID string) error

	// IsDeployed checks if a function is deployed
	IsDeployed(actorID string) bool

	// GetActorPID returns the PID of a deployed function, or nil
	GetActorPID(actorID string) *actors.PID

	// Ping asks a deployed function whether it is ready to serve
	Ping(ctx context.Context, actorID string) (bool, error)

	// Shutdown gracefully shuts down the runtime and all actors
	Shutdown(ctx context.Context) error
}
