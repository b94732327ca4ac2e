package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	os.Setenv("ANTHROPIC_API_KEY", "test-key")
	defer os.Unsetenv("ANTHROPIC_API_KEY")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, LLMProviderAnthropic, cfg.Agent.LLM.Provider)
	assert.Equal(t, "test-key", cfg.Agent.LLM.APIKey)
	assert.Equal(t, int64(30_000), cfg.Agent.Constraints.TimeoutMs)
	assert.Equal(t, 100, cfg.Agent.MaxConversationEntries)
	assert.Equal(t, 50, cfg.Agent.MaxExecutionEntries)
	assert.Equal(t, 1000, cfg.Manager.MaxSessions)
	assert.Equal(t, "go", cfg.Sandbox.InterpreterPath)
}

func TestLoad_MissingAPIKeyFails(t *testing.T) {
	os.Unsetenv("ANTHROPIC_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_EnvOverridesProvider(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("LLM_PROVIDER", "openai-compatible")
	os.Setenv("LLM_MODEL", "custom-model")
	defer os.Unsetenv("OPENAI_API_KEY")
	defer os.Unsetenv("LLM_PROVIDER")
	defer os.Unsetenv("LLM_MODEL")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, LLMProviderOpenAICompat, cfg.Agent.LLM.Provider)
	assert.Equal(t, "custom-model", cfg.Agent.LLM.Model)
}

func TestLoad_EnvOverridesTLS(t *testing.T) {
	os.Setenv("ANTHROPIC_API_KEY", "test-key")
	os.Setenv("LLM_CA_CERTIFICATE", "/etc/ssl/corp-ca.pem")
	os.Setenv("LLM_INSECURE_SKIP_VERIFY", "true")
	defer os.Unsetenv("ANTHROPIC_API_KEY")
	defer os.Unsetenv("LLM_CA_CERTIFICATE")
	defer os.Unsetenv("LLM_INSECURE_SKIP_VERIFY")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/etc/ssl/corp-ca.pem", cfg.Agent.LLM.CACertificate)
	assert.True(t, cfg.Agent.LLM.InsecureSkipVerify)
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Agent.LLM.Provider = "bogus"
	cfg.Agent.LLM.APIKey = "x"

	err := validate(cfg)
	require.Error(t, err)
}
