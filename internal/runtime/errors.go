package runtime

import "errors"

var (
	// Package creation errors
	ErrNilDispatcher = errors.New("dispatcher cannot be nil")
	ErrEmptyName     = errors.New("function name cannot be empty")

	// Lifecycle errors
	ErrAlreadyStarted  = errors.New("runtime already started")
	ErrNotStarted      = errors.New("runtime not started")
	ErrAlreadyDeployed = errors.New("function already deployed")
	ErrNotDeployed     = errors.New("function not deployed")

	// Messaging errors
	ErrInvalidMessage = errors.New("invalid message")
)
