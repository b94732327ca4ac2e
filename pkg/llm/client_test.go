package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/config"
)

func TestNewFromConfig_DefaultsToAnthropic(t *testing.T) {
	client, err := NewFromConfig(config.LLMConfig{APIKey: "k", Model: "m"})
	require.NoError(t, err)
	_, ok := client.(*anthropicClient)
	assert.True(t, ok)
}

func TestNewFromConfig_OpenAICompatible(t *testing.T) {
	client, err := NewFromConfig(config.LLMConfig{Provider: config.LLMProviderOpenAICompat, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	_, ok := client.(*openAIClient)
	assert.True(t, ok)
}

func TestNewFromConfig_InvalidCACertificateFails(t *testing.T) {
	_, err := NewFromConfig(config.LLMConfig{APIKey: "k", Model: "m", CACertificate: "/nonexistent/ca.pem"})
	require.Error(t, err)
}

func TestNewFromConfig_InsecureSkipVerifyWiresTLS(t *testing.T) {
	client, err := NewFromConfig(config.LLMConfig{APIKey: "k", Model: "m", InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
