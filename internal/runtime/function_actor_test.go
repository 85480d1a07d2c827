package runtime

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/okra-platform/utilfn/internal/functions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v2/actors"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Test plan for FunctionActor:
// 1. Test PreStart rejects a package without a dispatcher
// 2. Test invocations through a real actor system for each operation
// 3. Test malformed invocations are answered with a 400 reply
// 4. Test health pings report readiness

func spawnFunctionActor(t *testing.T, dispatcher *functions.Dispatcher) *actors.PID {
	t.Helper()
	ctx := context.Background()

	actorSystem, err := actors.NewActorSystem("test-system",
		actors.WithExpireActorAfter(1*time.Minute))
	require.NoError(t, err)
	require.NoError(t, actorSystem.Start(ctx))
	t.Cleanup(func() { actorSystem.Stop(ctx) })

	pkg, err := NewFunctionPackage("utility", dispatcher)
	require.NoError(t, err)

	pid, err := actorSystem.Spawn(ctx, pkg.ActorID(), NewFunctionActor(pkg, testLogger()))
	require.NoError(t, err)
	return pid
}

func askInvocation(t *testing.T, pid *actors.PID, params functions.Params) functions.Result {
	t.Helper()

	msg, err := NewInvocation("inv", params)
	require.NoError(t, err)

	reply, err := actors.Ask(context.Background(), pid, msg, time.Second)
	require.NoError(t, err)

	replyMsg, ok := reply.(*structpb.Struct)
	require.True(t, ok)

	id, result, err := DecodeReply(replyMsg)
	require.NoError(t, err)
	assert.Equal(t, "inv", id)
	return result
}

func TestFunctionActor_PreStart(t *testing.T) {
	actor := &FunctionActor{pkg: &FunctionPackage{Name: "broken"}}
	err := actor.PreStart(context.Background())
	assert.ErrorIs(t, err, ErrNilDispatcher)
	assert.False(t, actor.ready)
}

func TestFunctionActor_Invocations(t *testing.T) {
	fixed := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	dispatcher := functions.NewDispatcher(
		functions.WithClock(func() time.Time { return fixed }),
		functions.WithRandom(func() float64 { return 0 }),
	)
	pid := spawnFunctionActor(t, dispatcher)

	tests := []struct {
		name       string
		params     functions.Params
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "reverse",
			params:     functions.Params{"operation": "reverse", "text": "hello"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"reversed": "olleh"},
		},
		{
			name:       "random",
			params:     functions.Params{"operation": "random", "min": "3", "max": "9"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"random": float64(3)},
		},
		{
			name:       "timestamp unix",
			params:     functions.Params{"operation": "timestamp", "format": "unix"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"timestamp": float64(fixed.Unix())},
		},
		{
			name:       "timestamp iso",
			params:     functions.Params{"operation": "timestamp"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"timestamp": "2026-10-18T09:30:00.000Z"},
		},
		{
			name:       "invalid operation",
			params:     functions.Params{"operation": "invalid_operation"},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Invalid operation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := askInvocation(t, pid, tt.params)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantBody, result.Body)
		})
	}
}

func TestFunctionActor_MalformedInvocation(t *testing.T) {
	pid := spawnFunctionActor(t, functions.NewDispatcher())

	msg, err := structpb.NewStruct(map[string]any{"id": "bad"})
	require.NoError(t, err)

	reply, err := actors.Ask(context.Background(), pid, msg, time.Second)
	require.NoError(t, err)

	_, result, err := DecodeReply(reply.(*structpb.Struct))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Contains(t, result.Body["error"], "invalid message")
}

func TestFunctionActor_HealthPing(t *testing.T) {
	pid := spawnFunctionActor(t, functions.NewDispatcher())

	reply, err := actors.Ask(context.Background(), pid, wrapperspb.String("ping"), time.Second)
	require.NoError(t, err)

	ready, ok := reply.(*wrapperspb.BoolValue)
	require.True(t, ok)
	assert.True(t, ready.GetValue())
}
