package runtime

import (
	"testing"

	"github.com/okra-platform/utilfn/internal/functions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan for FunctionPackage:
// 1. Test NewFunctionPackage with valid inputs
// 2. Test NewFunctionPackage with empty name (error case)
// 3. Test NewFunctionPackage with nil dispatcher (error case)
// 4. Test ActorID with defaults and custom namespace/version

func TestFunctionPackage_NewFunctionPackage(t *testing.T) {
	// Test: Create a valid function package
	dispatcher := functions.NewDispatcher()

	pkg, err := NewFunctionPackage("utility", dispatcher)
	require.NoError(t, err)
	assert.Equal(t, "utility", pkg.Name)
	assert.Equal(t, DefaultNamespace, pkg.Namespace)
	assert.Equal(t, DefaultVersion, pkg.Version)
	assert.Same(t, dispatcher, pkg.Dispatcher)

	// Test: Empty name
	_, err = NewFunctionPackage("", dispatcher)
	assert.ErrorIs(t, err, ErrEmptyName)

	// Test: Nil dispatcher
	_, err = NewFunctionPackage("utility", nil)
	assert.ErrorIs(t, err, ErrNilDispatcher)
}

func TestFunctionPackage_ActorID(t *testing.T) {
	tests := []struct {
		name string
		pkg  FunctionPackage
		want string
	}{
		{
			name: "defaults",
			pkg:  FunctionPackage{Name: "utility"},
			want: "default.utility.v1",
		},
		{
			name: "custom namespace and version",
			pkg:  FunctionPackage{Name: "utility", Namespace: "tools", Version: "v2"},
			want: "tools.utility.v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pkg.ActorID())
		})
	}
}
