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

package llm

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
	"github.com/kadirpekel/agentcore/pkg/httpclient"
)

// anthropicClient speaks the Anthropic Messages API wire format: messages
// plus a separate system prompt and max_tokens, single request/response.
type anthropicClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	http        *httpclient.Client
}

// NewAnthropic builds a Client against the Anthropic Messages API.
// maxRetries defaults to 0 ("no automatic retry" per spec); callers that
// want retries set it explicitly via config. tlsConfig is nil unless the
// operator configured a custom CA or insecure mode for a self-hosted
// gateway at baseURL.
func NewAnthropic(apiKey, model, baseURL string, temperature float64, maxTokens, maxRetries int, tlsConfig *tls.Config) Client {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	opts := []httpclient.Option{
		httpclient.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		httpclient.WithMaxRetries(maxRetries),
		httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
	}
	if tlsConfig != nil {
		opts = append(opts, httpclient.WithTLSConfig(tlsConfig))
	}

	return &anthropicClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		http:        httpclient.New(opts...),
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *anthropicClient) Chat(messages []Message, opts *Options) (*Response, error) {
	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if opts != nil {
		if opts.Temperature != nil {
			req.Temperature = *opts.Temperature
		}
		if opts.MaxTokens != 0 {
			req.MaxTokens = opts.MaxTokens
		}
	}

	for _, m := range messages {
		if m.Role == RoleSystem {
			if req.System != "" {
				req.System += "\n\n"
			}
			req.System += m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindLLM, "marshaling anthropic request", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindLLM, "building anthropic request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindLLM, "anthropic request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindLLM, "reading anthropic response", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, coreerr.Newf(coreerr.KindLLM, "malformed anthropic response: %v", err)
	}
	if parsed.Error != nil {
		return nil, coreerr.Newf(coreerr.KindLLM, "anthropic API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, coreerr.Newf(coreerr.KindLLM, "anthropic HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, coreerr.New(coreerr.KindLLM, "anthropic response contained no text content")
	}

	return &Response{
		Content:   text,
		TokensIn:  parsed.Usage.InputTokens,
		TokensOut: parsed.Usage.OutputTokens,
	}, nil
}
