package runtime

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/tochemey/goakt/v2/actors"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FunctionActor is a GoAKT actor that executes function invocations
type FunctionActor struct {
	// pkg contains the dispatcher and identity of the function
	pkg *FunctionPackage

	logger zerolog.Logger

	// ready indicates if the actor is ready to process requests
	ready bool
}

// NewFunctionActor creates a new function actor
func NewFunctionActor(pkg *FunctionPackage, logger zerolog.Logger) *FunctionActor {
	return &FunctionActor{
		pkg:    pkg,
		logger: logger.With().Str("component", "function-actor").Str("function", pkg.Name).Logger(),
		ready:  false,
	}
}

// PreStart initializes the actor before it starts receiving messages
func (a *FunctionActor) PreStart(ctx context.Context) error {
	if a.pkg == nil || a.pkg.Dispatcher == nil {
		return ErrNilDispatcher
	}
	a.ready = true
	return nil
}

// Receive handles incoming messages
func (a *FunctionActor) Receive(ctx *actors.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *structpb.Struct:
		a.handleInvocation(ctx, msg)

	case *wrapperspb.StringValue:
		// Health ping
		ctx.Response(wrapperspb.Bool(a.ready))

	default:
		ctx.Unhandled()
	}
}

// PostStop cleans up resources when the actor stops
func (a *FunctionActor) PostStop(ctx context.Context) error {
	a.ready = false
	return nil
}

// handleInvocation runs the dispatcher for one invocation and replies with its result
func (a *FunctionActor) handleInvocation(ctx *actors.ReceiveContext, msg *structpb.Struct) {
	start := time.Now()

	id, params, err := DecodeInvocation(msg)
	if err != nil {
		a.logger.Warn().Err(err).Msg("rejecting malformed invocation")
		ctx.Response(replyError(id, http.StatusBadRequest, err.Error()))
		return
	}

	if !a.ready {
		ctx.Response(replyError(id, http.StatusInternalServerError, "function not ready"))
		return
	}

	result := a.pkg.Dispatcher.Dispatch(params)

	reply, err := NewReply(id, result)
	if err != nil {
		a.logger.Error().Err(err).Str("invocation_id", id).Msg("failed to encode reply")
		ctx.Response(replyError(id, http.StatusInternalServerError, "failed to encode result"))
		return
	}

	a.logger.Debug().
		Str("invocation_id", id).
		Stringer("operation", params.Operation()).
		Int("status", result.Status).
		Dur("duration", time.Since(start)).
		Msg("invocation handled")

	ctx.Response(reply)
}

// Ensure FunctionActor implements actors.Actor
var _ actors.Actor = (*FunctionActor)(nil)
