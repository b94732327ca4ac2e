package agentcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/coreerr"
	"github.com/kadirpekel/agentcore/pkg/sandbox"
)

func testFactory() (AgentFactory, *fakeSandbox) {
	sbx := &fakeSandbox{result: &sandbox.Result{Success: true, Stdout: "ok"}}
	return func(sessionID string) *Agent {
		return New(sessionID, testAgentConfig(), &fakeGenerator{code: "x"}, sbx, nil)
	}, sbx
}

func TestManager_Acquire_SameIDReturnsSameAgent(t *testing.T) {
	factory, _ := testFactory()
	m := NewManager(config.ManagerConfig{SweepInterval: time.Hour}, factory, nil)
	defer m.Shutdown(context.Background())

	a1, err := m.Acquire("s1")
	require.NoError(t, err)
	a2, err := m.Acquire("s1")
	require.NoError(t, err)
	assert.Same(t, a1, a2)
	assert.Equal(t, 1, m.Count())
}

func TestManager_Release(t *testing.T) {
	factory, sbx := testFactory()
	m := NewManager(config.ManagerConfig{SweepInterval: time.Hour}, factory, nil)
	defer m.Shutdown(context.Background())

	_, err := m.Acquire("s1")
	require.NoError(t, err)
	require.NoError(t, m.Release("s1"))
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, []string{"s1"}, sbx.cleaned)
}

func TestManager_Shutdown_RejectsFurtherAcquire(t *testing.T) {
	factory, _ := testFactory()
	m := NewManager(config.ManagerConfig{SweepInterval: time.Hour}, factory, nil)

	_, err := m.Acquire("s1")
	require.NoError(t, err)
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 0, m.Count())

	_, err = m.Acquire("s2")
	require.Error(t, err)
	assert.True(t, coreerr.Is(err, coreerr.KindManagerClosed))
}

func TestManager_Shutdown_Idempotent(t *testing.T) {
	factory, _ := testFactory()
	m := NewManager(config.ManagerConfig{SweepInterval: time.Hour}, factory, nil)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestManager_LRUEviction_WhenOverMaxSessions(t *testing.T) {
	factory, sbx := testFactory()
	m := NewManager(config.ManagerConfig{SweepInterval: time.Hour, MaxSessions: 2}, factory, nil)
	defer m.Shutdown(context.Background())

	_, err := m.Acquire("s1")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = m.Acquire("s2")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = m.Acquire("s3")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Count())
	assert.Contains(t, sbx.cleaned, "s1")
}

func TestManager_ActiveSessions(t *testing.T) {
	factory, _ := testFactory()
	m := NewManager(config.ManagerConfig{SweepInterval: time.Hour}, factory, nil)
	defer m.Shutdown(context.Background())

	m.Acquire("s1")
	m.Acquire("s2")
	ids := m.ActiveSessions()
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}
