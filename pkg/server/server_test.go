package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/agentcore"
	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/corehandler"
	"github.com/kadirpekel/agentcore/pkg/ptc"
	"github.com/kadirpekel/agentcore/pkg/sandbox"
)

type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, task string, opts ptc.Options) (string, error) {
	return "x", nil
}

type fakeSandbox struct{ healthy bool }

func (f fakeSandbox) Execute(ctx context.Context, code string, opts sandbox.Options) (*sandbox.Result, error) {
	return &sandbox.Result{Success: true, Stdout: "ok"}, nil
}
func (f fakeSandbox) Cleanup(sessionID string) error { return nil }
func (f fakeSandbox) HealthCheck() bool              { return f.healthy }

type fakeManager struct{ sbx fakeSandbox }

func (f fakeManager) Acquire(sessionID string) (*agentcore.Agent, error) {
	return agentcore.New(sessionID, config.AgentConfig{MaxConversationEntries: 100, MaxExecutionEntries: 50},
		fakeGenerator{}, f.sbx, nil), nil
}

func TestServer_HandleExecute(t *testing.T) {
	sbx := fakeSandbox{healthy: true}
	h := corehandler.New(fakeManager{sbx: sbx}, nil)
	s := New(":0", h, sbx, nil)

	body, _ := json.Marshal(corehandler.ExecuteRequest{Task: "do it"})
	req := httptest.NewRequest(http.MethodPost, "/v1/execute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp corehandler.ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
}

func TestServer_HandleExecute_InvalidJSON(t *testing.T) {
	sbx := fakeSandbox{healthy: true}
	h := corehandler.New(fakeManager{sbx: sbx}, nil)
	s := New(":0", h, sbx, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/execute", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_HandleHealth(t *testing.T) {
	sbx := fakeSandbox{healthy: false}
	h := corehandler.New(fakeManager{sbx: sbx}, nil)
	s := New(":0", h, sbx, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
