package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/okra-platform/utilfn/internal/functions"
	"github.com/okra-platform/utilfn/internal/runtime"
	"github.com/rs/zerolog"
)

// AdminServer provides an HTTP API for managing deployed functions
type AdminServer interface {
	// Start serves the admin API on port until ctx is cancelled
	Start(ctx context.Context, port int) error

	// Serve serves the admin API on an existing listener until ctx is cancelled
	Serve(ctx context.Context, ln net.Listener) error

	// Handler returns the admin API routes
	Handler() http.Handler

	// Deploy deploys the function under name and routes the gateway to it
	Deploy(ctx context.Context, name string, override bool) (*DeployedFunction, error)
}

// PackageFactory builds the function package deployed under a name
type PackageFactory func(name string) (*runtime.FunctionPackage, error)

// adminServer is the internal implementation of AdminServer
type adminServer struct {
	runtime        runtime.Runtime
	gateway        runtime.FunctionGateway
	packageFactory PackageFactory
	logger         zerolog.Logger

	// Track deployed functions
	deployedFunctions map[string]*DeployedFunction
	functionsMu       sync.RWMutex

	server *http.Server
}

// DeployedFunction tracks a deployed function
type DeployedFunction struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DeployedAt time.Time `json:"deployed_at"`
}

// DeployRequest represents a function deployment request
type DeployRequest struct {
	Name     string `json:"name"`
	Override bool   `json:"override"` // Allow redeploying the same function
}

// DeployResponse represents a deployment response
type DeployResponse struct {
	FunctionID string `json:"function_id"`
	Status     string `json:"status"`
}

// ListFunctionsResponse represents the list of deployed functions
type ListFunctionsResponse struct {
	Functions []*DeployedFunction `json:"functions"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Function string `json:"function,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewAdminServer creates a new admin server that deploys the built-in dispatcher
func NewAdminServer(rt runtime.Runtime, gateway runtime.FunctionGateway, logger zerolog.Logger) AdminServer {
	return NewAdminServerWithPackageFactory(rt, gateway, logger, defaultPackageFactory)
}

// NewAdminServerWithPackageFactory creates a new admin server with a custom package factory
func NewAdminServerWithPackageFactory(rt runtime.Runtime, gateway runtime.FunctionGateway, logger zerolog.Logger, factory PackageFactory) AdminServer {
	return &adminServer{
		runtime:           rt,
		gateway:           gateway,
		packageFactory:    factory,
		logger:            logger.With().Str("component", "admin").Logger(),
		deployedFunctions: make(map[string]*DeployedFunction),
	}
}

func defaultPackageFactory(name string) (*runtime.FunctionPackage, error) {
	return runtime.NewFunctionPackage(name, functions.NewDispatcher())
}

// Handler returns the admin API routes
func (s *adminServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/functions/deploy", s.handleDeploy)
	mux.HandleFunc("/api/v1/functions/", s.handleUndeploy) // Note the trailing slash for path prefix
	mux.HandleFunc("/api/v1/functions", s.handleListFunctions)

	return mux
}

// Start starts the admin server on the specified port
func (s *adminServer) Start(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the admin API on ln until ctx is cancelled
func (s *adminServer) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler: s.Handler(),
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("admin server listening")

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Deploy builds the function package, deploys it, and binds the gateway to it.
// Previously deployed functions keep running unbound; they are rebound when the
// bound function is undeployed.
func (s *adminServer) Deploy(ctx context.Context, name string, override bool) (*DeployedFunction, error) {
	pkg, err := s.packageFactory(name)
	if err != nil {
		return nil, fmt.Errorf("failed to build function package: %w", err)
	}

	actorID := pkg.ActorID()
	if override && s.runtime.IsDeployed(actorID) {
		if err := s.undeploy(ctx, actorID); err != nil {
			return nil, fmt.Errorf("failed to replace %s: %w", actorID, err)
		}
	}

	actorID, err = s.runtime.Deploy(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy to runtime: %w", err)
	}

	pid := s.runtime.GetActorPID(actorID)
	if pid == nil {
		return nil, fmt.Errorf("%w: no actor for %s", runtime.ErrNotDeployed, actorID)
	}
	s.gateway.Bind(actorID, pid)

	deployed := &DeployedFunction{
		ID:         actorID,
		Name:       pkg.Name,
		DeployedAt: time.Now(),
	}

	s.functionsMu.Lock()
	s.deployedFunctions[actorID] = deployed
	s.functionsMu.Unlock()

	s.logger.Info().Str("function_id", actorID).Msg("function deployed and exposed via gateway")
	return deployed, nil
}

// undeploy removes a function from the runtime, the gateway, and tracking.
// When the gateway was bound to it, the most recently deployed remaining
// function takes over the binding.
func (s *adminServer) undeploy(ctx context.Context, actorID string) error {
	if err := s.runtime.Undeploy(ctx, actorID); err != nil {
		return err
	}

	s.functionsMu.Lock()
	delete(s.deployedFunctions, actorID)
	var next *DeployedFunction
	for _, fn := range s.deployedFunctions {
		if next == nil || fn.DeployedAt.After(next.DeployedAt) {
			next = fn
		}
	}
	s.functionsMu.Unlock()

	s.logger.Info().Str("function_id", actorID).Msg("function undeployed")

	if !s.gateway.Unbind(actorID) || next == nil {
		return nil
	}

	if pid := s.runtime.GetActorPID(next.ID); pid != nil {
		s.gateway.Bind(next.ID, pid)
		s.logger.Info().Str("function_id", next.ID).Msg("gateway rebound to remaining function")
	}
	return nil
}

// handleHealth handles health check requests
func (s *adminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	response := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().Format(time.RFC3339),
		Function: s.gateway.Bound(),
	}
	status := http.StatusOK

	if response.Function != "" {
		ready, err := s.runtime.Ping(r.Context(), response.Function)
		if err != nil || !ready {
			s.logger.Warn().Err(err).Str("function_id", response.Function).Msg("health ping failed")
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	s.sendJSON(w, status, &response)
}

// handleDeploy handles function deployment requests
func (s *adminServer) handleDeploy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}

	deployed, err := s.Deploy(r.Context(), req.Name, req.Override)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runtime.ErrAlreadyDeployed) {
			status = http.StatusConflict
		}
		s.sendError(w, status, err.Error())
		return
	}

	s.sendJSON(w, http.StatusOK, &DeployResponse{
		FunctionID: deployed.ID,
		Status:     "deployed",
	})
}

// handleListFunctions handles listing deployed functions
func (s *adminServer) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.functionsMu.RLock()
	deployed := make([]*DeployedFunction, 0, len(s.deployedFunctions))
	for _, fn := range s.deployedFunctions {
		deployed = append(deployed, fn)
	}
	s.functionsMu.RUnlock()

	sort.Slice(deployed, func(i, j int) bool {
		return deployed[i].ID < deployed[j].ID
	})

	s.sendJSON(w, http.StatusOK, &ListFunctionsResponse{
		Functions: deployed,
	})
}

// handleUndeploy handles function undeployment. A GET on the bare prefix lists
// functions like /api/v1/functions.
func (s *adminServer) handleUndeploy(w http.ResponseWriter, r *http.Request) {
	// Expected format: /api/v1/functions/{id}
	path := r.URL.Path
	prefix := "/api/v1/functions/"

	if path == prefix && r.Method == http.MethodGet {
		s.handleListFunctions(w, r)
		return
	}

	if r.Method != http.MethodDelete {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if len(path) <= len(prefix) {
		s.sendError(w, http.StatusBadRequest, "function ID required")
		return
	}
	functionID := path[len(prefix):]

	s.functionsMu.RLock()
	_, exists := s.deployedFunctions[functionID]
	s.functionsMu.RUnlock()

	if !exists {
		s.sendError(w, http.StatusNotFound, "function not found")
		return
	}

	if err := s.undeploy(r.Context(), functionID); err != nil {
		s.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// sendJSON sends a JSON response with the given status
func (s *adminServer) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// sendError sends an error response
func (s *adminServer) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, &ErrorResponse{
		Error: message,
	})
}
