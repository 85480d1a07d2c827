package runtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okra-platform/utilfn/internal/functions"
	"github.com/rs/zerolog"
	"github.com/tochemey/goakt/v2/actors"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultInvokeTimeout bounds a single invocation when no timeout is configured
const DefaultInvokeTimeout = 30 * time.Second

// FunctionGateway exposes a deployed function over HTTP. Every path is served;
// parameters come from the query string.
type FunctionGateway interface {
	// Handler returns the HTTP handler for the gateway
	Handler() http.Handler

	// Bind routes invocations to the given function actor
	Bind(actorID string, pid *actors.PID)

	// Unbind stops routing to actorID; returns false if it was not bound
	Unbind(actorID string) bool

	// Bound returns the currently bound actor ID, or ""
	Bound() string

	// Shutdown gracefully shuts down the gateway
	Shutdown(ctx context.Context) error
}

// ActorClient provides an interface for actor communication
type ActorClient interface {
	Ask(ctx context.Context, pid *actors.PID, message *structpb.Struct, timeout time.Duration) (*structpb.Struct, error)
}

type defaultActorClient struct{}

func (c *defaultActorClient) Ask(ctx context.Context, pid *actors.PID, message *structpb.Struct, timeout time.Duration) (*structpb.Struct, error) {
	reply, err := actors.Ask(ctx, pid, message, timeout)
	if err != nil {
		return nil, err
	}
	response, ok := reply.(*structpb.Struct)
	if !ok {
		return nil, fmt.Errorf("%w: invalid response type %T from actor", ErrInvalidMessage, reply)
	}
	return response, nil
}

// NewFunctionGateway creates a new function gateway
func NewFunctionGateway(logger zerolog.Logger, timeout time.Duration) FunctionGateway {
	return NewFunctionGatewayWithClient(&defaultActorClient{}, logger, timeout)
}

// NewFunctionGatewayWithClient creates a new function gateway with a custom actor client for testing
func NewFunctionGatewayWithClient(client ActorClient, logger zerolog.Logger, timeout time.Duration) FunctionGateway {
	if timeout <= 0 {
		timeout = DefaultInvokeTimeout
	}

	return &functionGateway{
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}
}

type functionGateway struct {
	mu      sync.RWMutex
	actorID string
	pid     *actors.PID

	client  ActorClient
	timeout time.Duration
	logger  zerolog.Logger
}

func (g *functionGateway) Handler() http.Handler {
	return g
}

func (g *functionGateway) Bind(actorID string, pid *actors.PID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.actorID = actorID
	g.pid = pid

	g.logger.Info().Str("actor_id", actorID).Msg("gateway bound to function")
}

func (g *functionGateway) Unbind(actorID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.actorID != actorID || g.pid == nil {
		return false
	}

	g.actorID = ""
	g.pid = nil

	g.logger.Info().Str("actor_id", actorID).Msg("gateway unbound from function")
	return true
}

func (g *functionGateway) Bound() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.actorID
}

func (g *functionGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	g.mu.RLock()
	actorID, pid := g.actorID, g.pid
	g.mu.RUnlock()

	result := g.invoke(r, actorID, pid)

	if err := result.Write(w); err != nil {
		g.logger.Error().Err(err).Str("actor_id", actorID).Msg("failed to write response")
	}

	g.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", result.Status).
		Dur("duration", time.Since(start)).
		Msg("request served")
}

// invoke forwards the request parameters to the bound actor and returns its result
func (g *functionGateway) invoke(r *http.Request, actorID string, pid *actors.PID) functions.Result {
	if pid == nil {
		return functions.NewErrorResult(http.StatusServiceUnavailable, "function not deployed")
	}

	id := uuid.NewString()
	params := functions.ParseQuery(r.URL.RawQuery)

	msg, err := NewInvocation(id, params)
	if err != nil {
		g.logger.Error().Err(err).Str("invocation_id", id).Msg("failed to build invocation")
		return functions.NewErrorResult(http.StatusInternalServerError, "internal error")
	}

	reply, err := g.client.Ask(r.Context(), pid, msg, g.timeout)
	if err != nil {
		g.logger.Error().Err(err).
			Str("invocation_id", id).
			Str("actor_id", actorID).
			Msg("function invocation failed")
		return functions.NewErrorResult(http.StatusBadGateway, "function invocation failed")
	}

	replyID, result, err := DecodeReply(reply)
	if err != nil || replyID != id {
		g.logger.Error().Err(err).
			Str("invocation_id", id).
			Str("reply_id", replyID).
			Msg("invalid reply from function")
		return functions.NewErrorResult(http.StatusBadGateway, "function invocation failed")
	}

	g.logger.Debug().
		Str("invocation_id", id).
		Stringer("operation", params.Operation()).
		Int("status", result.Status).
		Msg("function invoked")

	return result
}

func (g *functionGateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.actorID = ""
	g.pid = nil

	return nil
}
