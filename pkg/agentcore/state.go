// Package agentcore implements the Agent and Session Manager: one Agent
// owns one session's conversation/execution history and variables and
// executes one task per Run call; the Manager bounds how many Agents
// exist at once and for how long.
package agentcore

import "time"

// ConversationEntry is one turn of an Agent's conversation history.
type ConversationEntry struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ExecutionEntry records one Run call's PTC code and outcome.
type ExecutionEntry struct {
	Task      string
	Code      string
	Success   bool
	Timestamp time.Time
}

// SessionState is the observable snapshot returned alongside an
// AgentResult: lengths, not full contents, per spec.md §4.6.
type SessionState struct {
	ConversationLength int
	ExecutionCount     int
	VariablesCount     int
}

// sessionState is an Agent's internal, append-only-until-bounded state.
// Callers guarantee Run calls for one session never overlap (spec.md
// §5), so no locking is required inside it.
//
// conversation/executions are trimmed to maxEntries as they grow, but
// totalConversationEntries/totalExecutions count every append regardless
// of trimming, so snapshot() can report the full cumulative length even
// once the in-memory sequence has been cut down (spec.md §5).
type sessionState struct {
	conversation             []ConversationEntry
	totalConversationEntries int
	executions               []ExecutionEntry
	totalExecutions          int
	variables                map[string]interface{}
}

func newSessionState() *sessionState {
	return &sessionState{variables: make(map[string]interface{})}
}

func (s *sessionState) appendConversation(role, content string, maxEntries int) {
	s.conversation = append(s.conversation, ConversationEntry{Role: role, Content: content, Timestamp: time.Now()})
	s.totalConversationEntries++
	if maxEntries > 0 && len(s.conversation) > maxEntries {
		s.conversation = s.conversation[len(s.conversation)-maxEntries:]
	}
}

func (s *sessionState) appendExecution(entry ExecutionEntry, maxEntries int) {
	s.executions = append(s.executions, entry)
	s.totalExecutions++
	if maxEntries > 0 && len(s.executions) > maxEntries {
		s.executions = s.executions[len(s.executions)-maxEntries:]
	}
}

func (s *sessionState) mergeVariables(vars map[string]interface{}) {
	for k, v := range vars {
		s.variables[k] = v
	}
}

func (s *sessionState) snapshot() SessionState {
	return SessionState{
		ConversationLength: s.totalConversationEntries,
		ExecutionCount:     s.totalExecutions,
		VariablesCount:     len(s.variables),
	}
}

func (s *sessionState) reset() {
	s.conversation = nil
	s.totalConversationEntries = 0
	s.executions = nil
	s.totalExecutions = 0
	s.variables = make(map[string]interface{})
}
