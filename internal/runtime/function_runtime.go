package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tochemey/goakt/v2/actors"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// pingTimeout bounds a health ping to a function actor
const pingTimeout = 2 * time.Second

// FunctionRuntime is the default implementation of Runtime
type FunctionRuntime struct {
	// actorSystem is the GoAKT actor system
	actorSystem actors.ActorSystem

	// deployedActors tracks deployed function actors
	deployedActors map[string]*actors.PID
	mu             sync.RWMutex

	// logger for runtime operations
	logger zerolog.Logger

	// started indicates if the runtime has been started
	started bool
}

// NewFunctionRuntime creates a new runtime instance
func NewFunctionRuntime(logger zerolog.Logger) *FunctionRuntime {
	return &FunctionRuntime{
		deployedActors: make(map[string]*actors.PID),
		logger:         logger.With().Str("component", "runtime").Logger(),
		started:        false,
	}
}

// Start initializes the runtime and starts the actor system
func (r *FunctionRuntime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}

	// Note: GoAKT uses its default logger. We track operations separately with zerolog
	actorSystem, err := actors.NewActorSystem("utilfn-runtime")
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}

	if err := actorSystem.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}

	r.actorSystem = actorSystem
	r.started = true

	r.logger.Info().Msg("runtime started successfully")
	return nil
}

// Deploy deploys a function package to the runtime
func (r *FunctionRuntime) Deploy(ctx context.Context, pkg *FunctionPackage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return "", ErrNotStarted
	}

	if pkg == nil || pkg.Dispatcher == nil {
		return "", ErrNilDispatcher
	}

	actorID := pkg.ActorID()

	if _, exists := r.deployedActors[actorID]; exists {
		return "", fmt.Errorf("%w: %s", ErrAlreadyDeployed, actorID)
	}

	actor := NewFunctionActor(pkg, r.logger)

	pid, err := r.actorSystem.Spawn(ctx, actorID, actor)
	if err != nil {
		return "", fmt.Errorf("failed to spawn actor %s: %w", actorID, err)
	}

	r.deployedActors[actorID] = pid

	r.logger.Info().
		Str("actor_id", actorID).
		Str("function", pkg.Name).
		Msg("function deployed successfully")

	return actorID, nil
}

// Undeploy removes a function from the runtime
func (r *FunctionRuntime) Undeploy(ctx context.Context, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrNotStarted
	}

	pid, exists := r.deployedActors[actorID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotDeployed, actorID)
	}

	if err := pid.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown actor %s: %w", actorID, err)
	}

	delete(r.deployedActors, actorID)

	r.logger.Info().
		Str("actor_id", actorID).
		Msg("function undeployed successfully")

	return nil
}

// IsDeployed checks if a function is deployed
func (r *FunctionRuntime) IsDeployed(actorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.deployedActors[actorID]
	return exists
}

// GetActorPID returns the PID for a given actor ID
func (r *FunctionRuntime) GetActorPID(actorID string) *actors.PID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pid, exists := r.deployedActors[actorID]; exists {
		return pid
	}
	return nil
}

// Deployed returns the IDs of all deployed functions in sorted order
func (r *FunctionRuntime) Deployed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.deployedActors))
	for id := range r.deployedActors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ping asks a deployed function whether it is ready to serve
func (r *FunctionRuntime) Ping(ctx context.Context, actorID string) (bool, error) {
	pid := r.GetActorPID(actorID)
	if pid == nil {
		return false, fmt.Errorf("%w: %s", ErrNotDeployed, actorID)
	}

	reply, err := actors.Ask(ctx, pid, wrapperspb.String("ping"), pingTimeout)
	if err != nil {
		return false, fmt.Errorf("failed to ping %s: %w", actorID, err)
	}

	ready, ok := reply.(*wrapperspb.BoolValue)
	if !ok {
		return false, fmt.Errorf("%w: unexpected ping reply %T", ErrInvalidMessage, reply)
	}
	return ready.GetValue(), nil
}

// Shutdown gracefully shuts down the runtime and all actors
func (r *FunctionRuntime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrNotStarted
	}

	r.logger.Info().
		Int("deployed_actors", len(r.deployedActors)).
		Msg("shutting down runtime")

	// Shutdown all deployed actors first
	var shutdownErrors []error
	for actorID, pid := range r.deployedActors {
		if err := pid.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors,
				fmt.Errorf("failed to shutdown actor %s: %w", actorID, err))
			r.logger.Error().
				Err(err).
				Str("actor_id", actorID).
				Msg("failed to shutdown actor")
		}
	}

	r.deployedActors = make(map[string]*actors.PID)

	if err := r.actorSystem.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop actor system: %w", err)
	}

	r.started = false
	r.logger.Info().Msg("runtime shutdown complete")

	// Return first error if any occurred during actor shutdown
	if len(shutdownErrors) > 0 {
		return shutdownErrors[0]
	}

	return nil
}

// Ensure FunctionRuntime implements Runtime interface
var _ Runtime = (*FunctionRuntime)(nil)
