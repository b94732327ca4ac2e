package httpclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAnthropicHeaders_RetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("retry-after", "5")
	info := ParseAnthropicHeaders(h)
	assert.Equal(t, 5*time.Second, info.RetryAfter)
}

func TestParseAnthropicHeaders_RequestsRemaining(t *testing.T) {
	h := http.Header{}
	h.Set("anthropic-ratelimit-requests-remaining", "42")
	info := ParseAnthropicHeaders(h)
	assert.Equal(t, 42, info.RequestsRemaining)
}

func TestParseAnthropicHeaders_Empty(t *testing.T) {
	info := ParseAnthropicHeaders(http.Header{})
	assert.Zero(t, info.RetryAfter)
	assert.Zero(t, info.ResetUnix)
}

func TestParseOpenAIHeaders_RetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "3")
	info := ParseOpenAIHeaders(h)
	assert.Equal(t, 3*time.Second, info.RetryAfter)
}

func TestParseOpenAIHeaders_RemainingCounters(t *testing.T) {
	h := http.Header{}
	h.Set("x-ratelimit-remaining-requests", "10")
	h.Set("x-ratelimit-remaining-tokens", "9000")
	info := ParseOpenAIHeaders(h)
	assert.Equal(t, 10, info.RequestsRemaining)
	assert.Equal(t, 9000, info.TokensRemaining)
}
