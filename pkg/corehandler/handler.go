// Package corehandler implements the single inbound Execute operation:
// a thin adapter from the external request/response shape (spec.md §6)
// onto Manager.Acquire -> Agent.Run.
package corehandler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentcore/pkg/agentcore"
	"github.com/kadirpekel/agentcore/pkg/coreerr"
)

// ExecuteRequest is the external request shape.
type ExecuteRequest struct {
	Task            string   `json:"task"`
	SessionID       string   `json:"sessionId,omitempty"`
	Continue        bool     `json:"continue,omitempty"`
	AvailableSkills []string `json:"availableSkills,omitempty"`
}

// ExecuteResponse is the external response shape.
type ExecuteResponse struct {
	Success         bool                   `json:"success"`
	SessionID       string                 `json:"sessionId"`
	Output          interface{}            `json:"output,omitempty"`
	Error           *ExecuteError          `json:"error,omitempty"`
	ExecutionTimeMs int64                  `json:"executionTimeMs"`
	State           agentcore.SessionState `json:"state"`
}

// ExecuteError is the error shape embedded in a failed ExecuteResponse.
type ExecuteError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Manager is the subset of agentcore.Manager that Handler depends on.
type Manager interface {
	Acquire(sessionID string) (*agentcore.Agent, error)
}

// Handler implements the Execute operation.
type Handler struct {
	manager Manager
	logger  *slog.Logger
}

func New(manager Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{manager: manager, logger: logger}
}

// Execute validates the request, acquires the session's Agent, and runs
// the task, per spec.md §6.
func (h *Handler) Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if strings.TrimSpace(req.Task) == "" {
		return ExecuteResponse{
			Success:   false,
			SessionID: sessionID,
			Error:     &ExecuteError{Kind: string(coreerr.KindValidation), Message: "task must not be empty"},
		}
	}

	agent, err := h.manager.Acquire(sessionID)
	if err != nil {
		return ExecuteResponse{
			Success:   false,
			SessionID: sessionID,
			Error:     &ExecuteError{Kind: errKind(err), Message: err.Error()},
		}
	}

	h.logger.Debug("executing task", "sessionId", sessionID, "continue", req.Continue)

	result := agent.Run(ctx, req.Task, agentcore.RunOptions{AvailableSkills: req.AvailableSkills})

	resp := ExecuteResponse{
		Success:         result.Success,
		SessionID:       result.SessionID,
		Output:          result.Output,
		ExecutionTimeMs: result.ExecutionTimeMs,
		State:           result.State,
	}
	if result.Error != nil {
		resp.Error = &ExecuteError{Kind: result.Error.Kind, Message: result.Error.Message}
	}
	return resp
}

func errKind(err error) string {
	if kind, ok := coreerr.KindOf(err); ok {
		return string(kind)
	}
	return string(coreerr.KindInternal)
}
