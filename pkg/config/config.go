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

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file (if path is non-empty and exists),
// expands ${VAR}/${VAR:-default}/$VAR references in every string value
// against the process environment, loads .env/.env.local first via
// LoadEnvFiles, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("config: loading .env files: %w", err)
	}

	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else {
			var generic map[string]interface{}
			if err := yaml.Unmarshal(raw, &generic); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
			expanded := ExpandEnvVarsInData(generic)
			reencoded, err := yaml.Marshal(expanded)
			if err != nil {
				return nil, fmt.Errorf("config: re-encoding %s: %w", path, err)
			}
			if err := yaml.Unmarshal(reencoded, cfg); err != nil {
				return nil, fmt.Errorf("config: decoding %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies the environment variables named in spec.md §6
// directly, so a bare environment (no YAML file at all) is enough to run.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Agent.LLM.Provider = LLMProvider(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Agent.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.Agent.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_CA_CERTIFICATE"); v != "" {
		cfg.Agent.LLM.CACertificate = v
	}
	if v := os.Getenv("LLM_INSECURE_SKIP_VERIFY"); v != "" {
		cfg.Agent.LLM.InsecureSkipVerify = v == "true" || v == "1"
	}
	if cfg.Agent.LLM.APIKey == "" {
		provider := cfg.Agent.LLM.Provider
		if provider == "" {
			provider = LLMProviderAnthropic
		}
		cfg.Agent.LLM.APIKey = GetProviderAPIKey(string(provider))
	}
	if v := os.Getenv("INTERPRETER_PATH"); v != "" {
		cfg.Sandbox.InterpreterPath = v
	}
	if v := os.Getenv("SANDBOX_WORKSPACE"); v != "" {
		cfg.Sandbox.Workspace = v
	}
	if v := os.Getenv("SKILLS_DIR"); v != "" {
		cfg.SkillsDir = v
	}
	if v := os.Getenv("SESSION_TIMEOUT_MS"); v != "" {
		if ms, err := parseMs(v); err == nil {
			cfg.Manager.SessionTimeout = ms
		}
	}
	if v := os.Getenv("MAX_SESSIONS"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Manager.MaxSessions = n
		}
	}
}

func parseMs(s string) (time.Duration, error) {
	var ms int64
	if _, err := fmt.Sscanf(s, "%d", &ms); err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parseInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}

func setDefaults(cfg *Config) {
	if cfg.Agent.LLM.Provider == "" {
		cfg.Agent.LLM.Provider = LLMProviderAnthropic
	}
	if cfg.Agent.LLM.Model == "" {
		switch cfg.Agent.LLM.Provider {
		case LLMProviderOpenAICompat:
			cfg.Agent.LLM.Model = "gpt-4o-mini"
		default:
			cfg.Agent.LLM.Model = "claude-3-5-sonnet-20241022"
		}
	}
	if cfg.Agent.LLM.Temperature == 0 {
		cfg.Agent.LLM.Temperature = 0.3
	}
	if cfg.Agent.LLM.MaxTokens == 0 {
		cfg.Agent.LLM.MaxTokens = 4096
	}

	if cfg.Agent.Constraints.TimeoutMs == 0 {
		cfg.Agent.Constraints.TimeoutMs = 30_000
	}
	if cfg.Agent.Constraints.StdoutCapByte == 0 {
		cfg.Agent.Constraints.StdoutCapByte = 1 << 20
	}
	if cfg.Agent.Constraints.StderrCapByte == 0 {
		cfg.Agent.Constraints.StderrCapByte = 1 << 20
	}
	if cfg.Agent.MaxConversationEntries == 0 {
		cfg.Agent.MaxConversationEntries = 100
	}
	if cfg.Agent.MaxExecutionEntries == 0 {
		cfg.Agent.MaxExecutionEntries = 50
	}
	if cfg.Agent.HistoryWindow == 0 {
		cfg.Agent.HistoryWindow = 5
	}

	if cfg.Manager.SessionTimeout == 0 {
		cfg.Manager.SessionTimeout = 30 * time.Minute
	}
	if cfg.Manager.SweepInterval == 0 {
		cfg.Manager.SweepInterval = 60 * time.Second
	}
	if cfg.Manager.MaxSessions == 0 {
		cfg.Manager.MaxSessions = 1000
	}
	if cfg.Manager.ShutdownGrace == 0 {
		cfg.Manager.ShutdownGrace = 30 * time.Second
	}

	if cfg.Sandbox.InterpreterPath == "" {
		cfg.Sandbox.InterpreterPath = "go"
	}
	if cfg.Sandbox.Workspace == "" {
		cfg.Sandbox.Workspace = os.TempDir()
	}
	if cfg.Sandbox.KillGrace == 0 {
		cfg.Sandbox.KillGrace = 2 * time.Second
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.SkillsDir == "" {
		cfg.SkillsDir = "./skills"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "simple"
	}

	cfg.Agent.SkillImplPath = cfg.SkillsDir
}

func validate(cfg *Config) error {
	switch cfg.Agent.LLM.Provider {
	case LLMProviderAnthropic, LLMProviderOpenAICompat:
	default:
		return fmt.Errorf("config: invalid llm.provider %q (want %q or %q)",
			cfg.Agent.LLM.Provider, LLMProviderAnthropic, LLMProviderOpenAICompat)
	}
	if cfg.Agent.LLM.APIKey == "" {
		return fmt.Errorf("config: missing API key for provider %q", cfg.Agent.LLM.Provider)
	}
	if cfg.Manager.MaxSessions <= 0 {
		return fmt.Errorf("config: manager.max_sessions must be positive")
	}
	if cfg.Agent.Constraints.TimeoutMs < 0 {
		return fmt.Errorf("config: agent.constraints.timeout_ms must be non-negative")
	}
	return nil
}
