// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates the runtime configuration: LLM
// provider settings, sandbox constraints, manager lifetime/cardinality
// bounds, the skills directory, and the workspace root.
package config

import "time"

// LLMProvider identifies the wire format the LLM Client speaks.
type LLMProvider string

const (
	LLMProviderAnthropic    LLMProvider = "anthropic"
	LLMProviderOpenAICompat LLMProvider = "openai-compatible"
)

// LLMConfig configures the single LLM Client instance shared across sessions.
type LLMConfig struct {
	Provider LLMProvider `yaml:"provider"`
	Model    string      `yaml:"model"`
	APIKey   string      `yaml:"api_key"`
	BaseURL  string      `yaml:"base_url"`

	// Temperature defaults to 0.3 or below to favor reproducible plans
	// (spec.md §4.5: "default modest (≤0.3)").
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// MaxRetries is 0 by default: "no automatic retry" is the spec default,
	// surfaced here so operators may opt in.
	MaxRetries int `yaml:"max_retries"`

	// CACertificate points to a custom CA bundle for BaseURL hosts behind
	// a corporate proxy or self-hosted gateway with a private cert.
	CACertificate string `yaml:"ca_certificate"`

	// InsecureSkipVerify disables TLS certificate verification. Dev/test
	// only; never set in production.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ConstraintsConfig bounds a single sandboxed execution.
type ConstraintsConfig struct {
	TimeoutMs     int64 `yaml:"timeout_ms"`
	StdoutCapByte int   `yaml:"stdout_cap_bytes"`
	StderrCapByte int   `yaml:"stderr_cap_bytes"`
}

// AgentConfig is passed to every Agent constructed by the Manager.
type AgentConfig struct {
	LLM         LLMConfig          `yaml:"llm"`
	Constraints ConstraintsConfig  `yaml:"constraints"`

	// SkillImplPath is the skills directory that the generated sandbox
	// program's skill Registry scans. Load always sets it to SkillsDir.
	SkillImplPath string `yaml:"skill_impl_path"`

	// MaxConversationEntries / MaxExecutionEntries bound an Agent's
	// in-memory history (spec.md §5, default 100 / 50).
	MaxConversationEntries int `yaml:"max_conversation_entries"`
	MaxExecutionEntries    int `yaml:"max_execution_entries"`

	// HistoryWindow defaults to 5. PTC prompt assembly does not read it:
	// pkg/ptc always feeds the last 5 conversation entries into prompts.
	HistoryWindow int `yaml:"history_window"`
}

// ManagerConfig bounds the Session Manager's lifetime/cardinality policy.
type ManagerConfig struct {
	SessionTimeout time.Duration `yaml:"session_timeout"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	MaxSessions    int           `yaml:"max_sessions"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// SandboxConfig configures the local Sandbox Adapter.
type SandboxConfig struct {
	// InterpreterPath names the `go` binary used to run generated
	// sandbox programs. Defaults to "go" resolved on PATH.
	InterpreterPath string `yaml:"interpreter_path"`

	// Workspace is the root directory under which per-session temp
	// workspaces are created.
	Workspace string `yaml:"workspace"`

	// ModulePath is this repository's module path, used to generate the
	// `replace` directive in each session's generated go.mod.
	ModulePath string `yaml:"module_path"`

	// ModuleDir is the absolute on-disk path of this repository's module
	// root, the target of that `replace` directive.
	ModuleDir string `yaml:"module_dir"`

	// KillGrace is the wait between a graceful terminate signal and a
	// hard kill (spec.md §4.4 step 6, default ~2s).
	KillGrace time.Duration `yaml:"kill_grace"`
}

// ServerConfig configures the HTTP front door in `cmd/agentcore`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the top-level, fully-expanded runtime configuration.
type Config struct {
	Agent     AgentConfig   `yaml:"agent"`
	Manager   ManagerConfig `yaml:"manager"`
	Sandbox   SandboxConfig `yaml:"sandbox"`
	Server    ServerConfig  `yaml:"server"`
	SkillsDir string        `yaml:"skills_dir"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
}
