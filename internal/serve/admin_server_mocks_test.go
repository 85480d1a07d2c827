package serve

import (
	"context"
	"net/http"

	"github.com/okra-platform/utilfn/internal/runtime"
	"github.com/stretchr/testify/mock"
	"github.com/tochemey/goakt/v2/actors"
)

// Mock implementations for testing admin server
type mockRuntime struct {
	mock.Mock
}

func (m *mockRuntime) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRuntime) Deploy(ctx context.Context, pkg *runtime.FunctionPackage) (string, error) {
	args := m.Called(ctx, pkg)
	return args.String(0), args.Error(1)
}

func (m *mockRuntime) Undeploy(ctx context.Context, actorID string) error {
	args := m.Called(ctx, actorID)
	return args.Error(0)
}

func (m *mockRuntime) IsDeployed(actorID string) bool {
	args := m.Called(actorID)
	return args.Bool(0)
}

func (m *mockRuntime) GetActorPID(actorID string) *actors.PID {
	args := m.Called(actorID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*actors.PID)
}

func (m *mockRuntime) Ping(ctx context.Context, actorID string) (bool, error) {
	args := m.Called(ctx, actorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRuntime) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockFunctionGateway struct {
	mock.Mock
}

func (m *mockFunctionGateway) Handler() http.Handler {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(http.Handler)
}

func (m *mockFunctionGateway) Bind(actorID string, pid *actors.PID) {
	m.Called(actorID, pid)
}

func (m *mockFunctionGateway) Unbind(actorID string) bool {
	args := m.Called(actorID)
	return args.Bool(0)
}

func (m *mockFunctionGateway) Bound() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockFunctionGateway) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ runtime.Runtime         = (*mockRuntime)(nil)
	_ runtime.FunctionGateway = (*mockFunctionGateway)(nil)
)
