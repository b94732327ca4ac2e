package agentcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/coreerr"
	"github.com/kadirpekel/agentcore/pkg/ptc"
	"github.com/kadirpekel/agentcore/pkg/sandbox"
)

type fakeGenerator struct {
	code string
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, task string, opts ptc.Options) (string, error) {
	return f.code, f.err
}

type fakeSandbox struct {
	result     *sandbox.Result
	err        error
	cleanupErr error
	cleaned    []string
}

func (f *fakeSandbox) Execute(ctx context.Context, code string, opts sandbox.Options) (*sandbox.Result, error) {
	return f.result, f.err
}

func (f *fakeSandbox) Cleanup(sessionID string) error {
	f.cleaned = append(f.cleaned, sessionID)
	return f.cleanupErr
}

func testAgentConfig() config.AgentConfig {
	return config.AgentConfig{
		MaxConversationEntries: 100,
		MaxExecutionEntries:    50,
	}
}

func TestAgent_Run_Success(t *testing.T) {
	gen := &fakeGenerator{code: "fmt.Println(1)"}
	sbx := &fakeSandbox{result: &sandbox.Result{Success: true, Stdout: `{"answer": 42}`}}
	a := New("s1", testAgentConfig(), gen, sbx, nil)

	result := a.Run(context.Background(), "do a thing")
	require.True(t, result.Success)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, 2, result.State.ConversationLength)
	assert.Equal(t, 1, result.State.ExecutionCount)
}

func TestAgent_Run_MergesVariablesFromSandboxOutput(t *testing.T) {
	gen := &fakeGenerator{code: "..."}
	sbx := &fakeSandbox{result: &sandbox.Result{Success: true, Stdout: `{"result": "ok", "variables": {"x": 1}}`}}
	a := New("s1", testAgentConfig(), gen, sbx, nil)

	result := a.Run(context.Background(), "task")
	require.True(t, result.Success)
	v, ok := a.GetVariable("x")
	require.True(t, ok)
	assert.EqualValues(t, 1, v)
	assert.Equal(t, 1, result.State.VariablesCount)
}

func TestAgent_Run_PTCGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: coreerr.New(coreerr.KindPlanning, "bad plan")}
	sbx := &fakeSandbox{}
	a := New("s1", testAgentConfig(), gen, sbx, nil)

	result := a.Run(context.Background(), "task")
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, string(coreerr.KindPlanning), result.Error.Kind)
}

func TestAgent_Run_SandboxFailure(t *testing.T) {
	gen := &fakeGenerator{code: "..."}
	sbx := &fakeSandbox{result: &sandbox.Result{
		Success: false,
		Error:   &sandbox.ResultError{Kind: sandbox.ErrorKindTimeout, Message: "timed out"},
	}}
	a := New("s1", testAgentConfig(), gen, sbx, nil)

	result := a.Run(context.Background(), "task")
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, string(sandbox.ErrorKindTimeout), result.Error.Kind)
}

func TestAgent_SetGetVariable(t *testing.T) {
	a := New("s1", testAgentConfig(), &fakeGenerator{}, &fakeSandbox{}, nil)
	a.SetVariable("k", "v")
	v, ok := a.GetVariable("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = a.GetVariable("missing")
	assert.False(t, ok)
}

func TestAgent_Cleanup(t *testing.T) {
	sbx := &fakeSandbox{}
	a := New("s1", testAgentConfig(), &fakeGenerator{code: "x"}, sbx, nil)
	a.SetVariable("k", "v")

	require.NoError(t, a.Cleanup())
	assert.Equal(t, []string{"s1"}, sbx.cleaned)
	assert.Equal(t, 0, a.GetState().VariablesCount)
}

func TestAgent_Run_HistoryBoundTrimsOldestEntries(t *testing.T) {
	cfg := testAgentConfig()
	cfg.MaxConversationEntries = 2
	gen := &fakeGenerator{code: "..."}
	sbx := &fakeSandbox{result: &sandbox.Result{Success: true, Stdout: "ok"}}
	a := New("s1", cfg, gen, sbx, nil)

	a.Run(context.Background(), "first")
	a.Run(context.Background(), "second")
	result := a.Run(context.Background(), "third")

	// Each Run appends a user entry and an assistant entry; the in-memory
	// sequence is trimmed to MaxConversationEntries, but the reported
	// ConversationLength is the cumulative total regardless of trimming.
	assert.Equal(t, 6, result.State.ConversationLength)
	assert.Len(t, a.state.conversation, 2)
}
