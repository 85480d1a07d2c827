package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/okra-platform/utilfn/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan:
// 1. Test existing utilfn.json is never overwritten
// 2. Test successful config creation flow
// 3. Test defaults fill options left empty
// 4. Test invalid options and write failures
// 5. Test form validators (empty name, bad ports)
// 6. Test form input with tea.WithInput

type mockFileSystem struct {
	statCalls    []string
	writeFileErr error
	wd           string
	wdErr        error
	files        map[string]bool
	written      map[string][]byte
}

func (m *mockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.statCalls = append(m.statCalls, name)
	if m.files != nil && m.files[name] {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if m.writeFileErr != nil {
		return m.writeFileErr
	}
	if m.written == nil {
		m.written = make(map[string][]byte)
	}
	m.written[name] = data
	return nil
}

func (m *mockFileSystem) Getwd() (string, error) {
	if m.wdErr != nil {
		return "", m.wdErr
	}
	if m.wd == "" {
		return "/work", nil
	}
	return m.wd, nil
}

func decodeWritten(t *testing.T, fs *mockFileSystem, path string) config.Config {
	t.Helper()

	data, ok := fs.written[path]
	require.True(t, ok, "expected %s to be written", path)

	var cfg config.Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	return cfg
}

func TestInitCommand_Run_ConfigExists(t *testing.T) {
	// Test: existing config is left untouched
	mockFS := &mockFileSystem{
		files: map[string]bool{"/work/utilfn.json": true},
	}

	cmd := &InitCommand{
		filesystem:  mockFS,
		testOptions: &InitOptions{Name: "utility"},
	}

	err := cmd.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigExists))
	assert.Empty(t, mockFS.written)
}

func TestInitCommand_Run_YAMLConfigExists(t *testing.T) {
	// Test: a YAML config also blocks init
	mockFS := &mockFileSystem{
		files: map[string]bool{"/work/utilfn.yaml": true},
	}

	cmd := &InitCommand{
		filesystem:  mockFS,
		testOptions: &InitOptions{},
	}

	err := cmd.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfigExists)
	assert.Empty(t, mockFS.written)
}

func TestInitCommand_Run_FullFlow(t *testing.T) {
	// Test: complete successful flow with test options
	mockFS := &mockFileSystem{wd: "/projects/fn"}

	cmd := &InitCommand{
		filesystem: mockFS,
		testOptions: &InitOptions{
			Name:      "strings",
			Port:      9000,
			AdminPort: 9001,
			LogLevel:  "debug",
		},
	}

	err := cmd.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, mockFS.statCalls, "/projects/fn/utilfn.json")

	cfg := decodeWritten(t, mockFS, "/projects/fn/utilfn.json")
	assert.Equal(t, "strings", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 9001, cfg.AdminPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.DefaultInvokeTimeout, cfg.InvokeTimeout)
}

func TestInitCommand_Run_Defaults(t *testing.T) {
	// Test: empty options produce the default config
	mockFS := &mockFileSystem{}

	cmd := &InitCommand{
		filesystem:  mockFS,
		testOptions: &InitOptions{},
	}

	require.NoError(t, cmd.Run(context.Background()))

	cfg := decodeWritten(t, mockFS, "/work/utilfn.json")
	assert.Equal(t, *config.Default(), cfg)
}

func TestInitCommand_Run_Errors(t *testing.T) {
	tests := []struct {
		name        string
		fs          *mockFileSystem
		options     *InitOptions
		errContains string
	}{
		{
			name:        "getwd fails",
			fs:          &mockFileSystem{wdErr: errors.New("gone")},
			options:     &InitOptions{},
			errContains: "failed to get current directory",
		},
		{
			name:        "ports collide",
			fs:          &mockFileSystem{},
			options:     &InitOptions{Port: 8080, AdminPort: 8080},
			errContains: "invalid options",
		},
		{
			name:        "unknown log level",
			fs:          &mockFileSystem{},
			options:     &InitOptions{LogLevel: "loud"},
			errContains: "invalid options",
		},
		{
			name:        "write fails",
			fs:          &mockFileSystem{writeFileErr: errors.New("read-only")},
			options:     &InitOptions{},
			errContains: "failed to write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &InitCommand{
				filesystem:  tt.fs,
				testOptions: tt.options,
			}

			err := cmd.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestInitCommand_FormValidation(t *testing.T) {
	// Test: validators used by the form
	assert.Error(t, validateName(""))
	assert.NoError(t, validateName("utility"))

	for _, port := range []string{"", "abc", "0", "65536", "-1"} {
		assert.Error(t, validatePort(port), "port %q", port)
	}
	for _, port := range []string{"1", "8000", "65535"} {
		assert.NoError(t, validatePort(port), "port %q", port)
	}

	cmd := NewInitCommand()
	var name, port, adminPort, logLevel string
	form := cmd.createInitForm(&name, &port, &adminPort, &logLevel)
	assert.NotNil(t, form)
}

// Integration test for the form - skip in CI but useful for local development
func TestInitCommand_promptInitOptions_Interactive(t *testing.T) {
	// Always skip this test in automated runs to prevent deadlocks
	if os.Getenv("INTERACTIVE_TEST") != "true" {
		t.Skip("Skipping interactive test. Set INTERACTIVE_TEST=true to run")
	}

	// Test: form accepts input via tea.WithInput
	cmd := &InitCommand{
		filesystem: &mockFileSystem{},
	}

	// Accept prefilled name and ports, then arrow down to debug
	input := strings.NewReader("\n\n\n\x1b[B\n")

	options, err := cmd.promptInitOptions(
		tea.WithInput(input),
		tea.WithoutRenderer(),
	)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultName, options.Name)
	assert.Equal(t, config.DefaultPort, options.Port)
	assert.Equal(t, config.DefaultAdminPort, options.AdminPort)
	assert.Equal(t, "debug", options.LogLevel)
}
