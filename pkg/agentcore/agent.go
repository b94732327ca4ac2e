package agentcore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/coreerr"
	"github.com/kadirpekel/agentcore/pkg/logger"
	"github.com/kadirpekel/agentcore/pkg/ptc"
	"github.com/kadirpekel/agentcore/pkg/sandbox"
)

// Result is the outcome of one Agent.Run call.
type Result struct {
	Success         bool
	SessionID       string
	Output          interface{}
	Error           *ResultError
	State           SessionState
	ExecutionTimeMs int64
}

// ResultError carries a coreerr.Kind (as a string, to keep this package
// independent of exactly which component produced the failure) and a
// human-readable message.
type ResultError struct {
	Kind    string
	Message string
}

// Generator is the subset of ptc.Generator.Generate that Agent depends on.
type Generator interface {
	Generate(ctx context.Context, task string, opts ptc.Options) (string, error)
}

// SandboxExecutor is the subset of sandbox.Adapter that Agent depends on.
type SandboxExecutor interface {
	Execute(ctx context.Context, code string, opts sandbox.Options) (*sandbox.Result, error)
	Cleanup(sessionID string) error
}

// Agent owns one session's state and runs one task per Run call, per
// spec.md §4.6.
type Agent struct {
	sessionID string
	cfg       config.AgentConfig
	generator Generator
	sbx       SandboxExecutor
	logger    *slog.Logger

	state          *sessionState
	lastActivityAt time.Time
}

func New(sessionID string, cfg config.AgentConfig, generator Generator, sbx SandboxExecutor, log *slog.Logger) *Agent {
	return &Agent{
		sessionID:      sessionID,
		cfg:            cfg,
		generator:      generator,
		sbx:            sbx,
		logger:         logger.WithSession(log, sessionID),
		state:          newSessionState(),
		lastActivityAt: time.Now(),
	}
}

// LastActivityAt reports when this Agent was last touched by Acquire or
// started a Run call.
func (a *Agent) LastActivityAt() time.Time {
	return a.lastActivityAt
}

// Touch records activity without running a task; the Session Manager
// calls this on every Acquire of an already-registered session.
func (a *Agent) Touch() {
	a.touch()
}

func (a *Agent) touch() {
	a.lastActivityAt = time.Now()
}

// RunOptions carries per-request overrides for Run.
type RunOptions struct {
	// AvailableSkills restricts the active skill set for this task only.
	// Empty means all discovered skills are available.
	AvailableSkills []string
}

// Run executes one task, per spec.md §4.6's five-step algorithm.
func (a *Agent) Run(ctx context.Context, task string, opts ...RunOptions) Result {
	var runOpts RunOptions
	if len(opts) > 0 {
		runOpts = opts[0]
	}

	a.touch()
	a.logger.Debug("run started", "task", task)
	a.state.appendConversation("user", task, a.cfg.MaxConversationEntries)

	history := a.conversationForPTC()
	code, err := a.generator.Generate(ctx, task, ptc.Options{
		History:         history,
		Variables:       a.state.variables,
		Model:           a.cfg.LLM.Model,
		AvailableSkills: runOpts.AvailableSkills,
	})
	if err != nil {
		a.logger.Warn("ptc generation failed", "error", err)
		a.state.appendConversation("assistant", "Error: "+err.Error(), a.cfg.MaxConversationEntries)
		return Result{
			Success:   false,
			SessionID: a.sessionID,
			Error:     &ResultError{Kind: kindOf(err), Message: err.Error()},
			State:     a.state.snapshot(),
		}
	}

	sbxResult, err := a.sbx.Execute(ctx, code, sandbox.Options{
		SessionID:     a.sessionID,
		TimeoutMs:     a.cfg.Constraints.TimeoutMs,
		SkillImplPath: a.cfg.SkillImplPath,
	})
	if err != nil {
		a.logger.Error("sandbox execute failed", "error", err)
		a.state.appendConversation("assistant", "Error: "+err.Error(), a.cfg.MaxConversationEntries)
		return Result{
			Success:   false,
			SessionID: a.sessionID,
			Error:     &ResultError{Kind: string(coreerr.KindExecution), Message: err.Error()},
			State:     a.state.snapshot(),
		}
	}

	a.state.appendExecution(ExecutionEntry{Task: task, Code: code, Success: sbxResult.Success, Timestamp: time.Now()}, a.cfg.MaxExecutionEntries)

	if !sbxResult.Success {
		msg := "sandbox execution failed"
		if sbxResult.Error != nil {
			msg = sbxResult.Error.Message
		}
		a.logger.Warn("task failed", "reason", msg)
		a.state.appendConversation("assistant", "Error: "+msg, a.cfg.MaxConversationEntries)
		return Result{
			Success:         false,
			SessionID:       a.sessionID,
			Error:           &ResultError{Kind: string(sbxResultErrorKind(sbxResult)), Message: msg},
			State:           a.state.snapshot(),
			ExecutionTimeMs: sbxResult.ExecutionTimeMs,
		}
	}

	output, variables := parseSandboxOutput(sbxResult.Stdout)
	a.state.mergeVariables(variables)
	a.state.appendConversation("assistant", fmt.Sprintf("%v", output), a.cfg.MaxConversationEntries)
	a.logger.Debug("run completed", "execution_ms", sbxResult.ExecutionTimeMs)

	return Result{
		Success:         true,
		SessionID:       a.sessionID,
		Output:          output,
		State:           a.state.snapshot(),
		ExecutionTimeMs: sbxResult.ExecutionTimeMs,
	}
}

// GetState returns the observable session state snapshot.
func (a *Agent) GetState() SessionState {
	return a.state.snapshot()
}

// SetVariable sets a session variable.
func (a *Agent) SetVariable(key string, value interface{}) {
	a.state.variables[key] = value
}

// GetVariable returns a session variable and whether it was present.
func (a *Agent) GetVariable(key string) (interface{}, bool) {
	v, ok := a.state.variables[key]
	return v, ok
}

// Cleanup releases the sandbox workspace and empties session state.
func (a *Agent) Cleanup() error {
	err := a.sbx.Cleanup(a.sessionID)
	a.state.reset()
	return err
}

func (a *Agent) conversationForPTC() []ptc.Message {
	msgs := make([]ptc.Message, 0, len(a.state.conversation))
	for _, c := range a.state.conversation {
		msgs = append(msgs, ptc.Message{Role: c.Role, Content: c.Content})
	}
	return msgs
}

// parseSandboxOutput attempts to interpret stdout as JSON; if it decodes
// to an object carrying a "variables" field, that field is returned
// separately for merging (spec.md §4.6 step 4) and stripped from output.
func parseSandboxOutput(stdout string) (interface{}, map[string]interface{}) {
	trimmed := strings.TrimSpace(stdout)
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return trimmed, nil
	}

	variables, _ := parsed["variables"].(map[string]interface{})
	if variables != nil {
		delete(parsed, "variables")
	}
	return parsed, variables
}

func sbxResultErrorKind(r *sandbox.Result) sandbox.ErrorKind {
	if r.Error != nil {
		return r.Error.Kind
	}
	return sandbox.ErrorKindExecution
}

// kindOf extracts the coreerr.Kind from err, as a plain string, so
// Result.Error.Kind stays independent of which package produced the
// failure.
func kindOf(err error) string {
	if kind, ok := coreerr.KindOf(err); ok {
		return string(kind)
	}
	return string(coreerr.KindInternal)
}
