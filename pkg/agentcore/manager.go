package agentcore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/coreerr"
)

// AgentFactory constructs a new Agent bound to sessionID. The Manager
// calls it at most once per session.
type AgentFactory func(sessionID string) *Agent

type registeredAgent struct {
	agent *Agent
	seq   int64
}

// Manager is the only component that knows how many Agents exist; it
// enforces lifetime and cardinality bounds, per spec.md §4.7.
type Manager struct {
	sessionTimeout time.Duration
	sweepInterval  time.Duration
	maxSessions    int
	shutdownGrace  time.Duration
	factory        AgentFactory
	logger         *slog.Logger

	mu       sync.Mutex
	sessions map[string]*registeredAgent
	nextSeq  int64
	closed   bool

	stopSweep chan struct{}
	sweepOnce sync.Once
}

func NewManager(cfg config.ManagerConfig, factory AgentFactory, logger *slog.Logger) *Manager {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 60 * time.Second
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		sessionTimeout: cfg.SessionTimeout,
		sweepInterval:  cfg.SweepInterval,
		maxSessions:    cfg.MaxSessions,
		shutdownGrace:  cfg.ShutdownGrace,
		factory:        factory,
		logger:         logger,
		sessions:       make(map[string]*registeredAgent),
		stopSweep:      make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Acquire returns the Agent for sessionID, creating one if needed. It
// never returns two different Agents for the same id.
func (m *Manager) Acquire(sessionID string) (*Agent, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, coreerr.New(coreerr.KindManagerClosed, "session manager is shut down")
	}

	if existing, ok := m.sessions[sessionID]; ok {
		existing.agent.Touch()
		m.mu.Unlock()
		return existing.agent, nil
	}

	agent := m.factory(sessionID)
	m.nextSeq++
	m.sessions[sessionID] = &registeredAgent{agent: agent, seq: m.nextSeq}

	var evicted *Agent
	var evictID string
	if len(m.sessions) > m.maxSessions {
		evictID = m.oldestSessionLocked(sessionID)
		if evictID != "" {
			evicted = m.sessions[evictID].agent
			delete(m.sessions, evictID)
		}
	}
	m.mu.Unlock()

	if evicted != nil {
		m.logger.Debug("evicting session to respect maxSessions", "sessionId", evictID)
		_ = evicted.Cleanup()
	}

	return agent, nil
}

// oldestSessionLocked finds the session with the oldest LastActivityAt,
// tie-broken by insertion order. Must be called with m.mu held. excludeID
// is never chosen (it is the just-inserted session).
func (m *Manager) oldestSessionLocked(excludeID string) string {
	var oldestID string
	var oldest *registeredAgent
	for id, ra := range m.sessions {
		if id == excludeID {
			continue
		}
		if oldest == nil {
			oldestID, oldest = id, ra
			continue
		}
		la, lo := ra.agent.LastActivityAt(), oldest.agent.LastActivityAt()
		if la.Before(lo) || (la.Equal(lo) && ra.seq < oldest.seq) {
			oldestID, oldest = id, ra
		}
	}
	return oldestID
}

// Release cleans up and removes sessionID, if present.
func (m *Manager) Release(sessionID string) error {
	m.mu.Lock()
	ra, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return ra.agent.Cleanup()
}

// Count returns the number of currently registered sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ActiveSessions returns the currently registered session ids.
func (m *Manager) ActiveSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops the sweeper and cleans up every Agent concurrently,
// waiting at most shutdownGrace (or until ctx ends) for the cleanups.
// Idempotent; no Acquire succeeds after Shutdown has been called.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	agents := make([]*Agent, 0, len(m.sessions))
	for _, ra := range m.sessions {
		agents = append(agents, ra.agent)
	}
	m.sessions = make(map[string]*registeredAgent)
	m.mu.Unlock()

	m.sweepOnce.Do(func() { close(m.stopSweep) })

	drainCtx, cancel := context.WithTimeout(ctx, m.shutdownGrace)
	defer cancel()

	g, _ := errgroup.WithContext(drainCtx)
	for _, agent := range agents {
		agent := agent
		g.Go(func() error {
			return agent.Cleanup()
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		return err
	case <-drainCtx.Done():
		return drainCtx.Err()
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopSweep:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep performs a single pass, releasing sessions whose last activity
// exceeds sessionTimeout. It holds the lock only long enough to collect
// expired agents, never across Agent.Cleanup.
func (m *Manager) sweep() {
	now := time.Now()

	m.mu.Lock()
	var expired []*Agent
	for id, ra := range m.sessions {
		if now.Sub(ra.agent.LastActivityAt()) > m.sessionTimeout {
			expired = append(expired, ra.agent)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, agent := range expired {
		m.logger.Debug("sweeping idle session")
		_ = agent.Cleanup()
	}
}
