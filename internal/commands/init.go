package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/okra-platform/utilfn/internal/config"
)

// ErrConfigExists is returned when init would overwrite an existing config file
var ErrConfigExists = errors.New("config file already exists")

type InitOptions struct {
	Name      string
	Port      int
	AdminPort int
	LogLevel  string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Getwd() (string, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *osFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

type InitCommand struct {
	filesystem FileSystem
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
	}
}

func (c *Controller) Init(ctx context.Context) error {
	cmd := NewInitCommand()
	return cmd.Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	dir, err := ic.filesystem.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	for _, name := range config.FileNames {
		existing := filepath.Join(dir, name)
		if _, err := ic.filesystem.Stat(existing); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, existing)
		}
	}
	path := filepath.Join(dir, config.FileName)

	var options *InitOptions

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	if err := ic.writeConfig(path, options); err != nil {
		return err
	}

	fmt.Printf("Created %s for function %q\n", path, options.Name)
	return nil
}

// writeConfig validates options as a config and writes it to path
func (ic *InitCommand) writeConfig(path string, options *InitOptions) error {
	cfg := config.Default()
	if options.Name != "" {
		cfg.Name = options.Name
	}
	if options.Port > 0 {
		cfg.Port = options.Port
	}
	if options.AdminPort > 0 {
		cfg.AdminPort = options.AdminPort
	}
	if options.LogLevel != "" {
		cfg.LogLevel = options.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := ic.filesystem.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	name := config.DefaultName
	port := strconv.Itoa(config.DefaultPort)
	adminPort := strconv.Itoa(config.DefaultAdminPort)
	logLevel := config.DefaultLogLevel

	form := ic.createInitForm(&name, &port, &adminPort, &logLevel)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	portNum, err := parsePort(port)
	if err != nil {
		return nil, err
	}
	adminPortNum, err := parsePort(adminPort)
	if err != nil {
		return nil, err
	}

	return &InitOptions{
		Name:      name,
		Port:      portNum,
		AdminPort: adminPortNum,
		LogLevel:  logLevel,
	}, nil
}

func (ic *InitCommand) createInitForm(name, port, adminPort, logLevel *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Function name").
				Description("Name the function is deployed under").
				Value(name).
				Validate(validateName),

			huh.NewInput().
				Title("Port").
				Description("Port the function is served on").
				Value(port).
				Validate(validatePort),

			huh.NewInput().
				Title("Admin port").
				Description("Port the admin API is served on").
				Value(adminPort).
				Validate(validatePort),

			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Info", "info"),
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(logLevel),
		),
	)
}

func validateName(s string) error {
	if s == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	return nil
}

func validatePort(s string) error {
	_, err := parsePort(s)
	return err
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}
