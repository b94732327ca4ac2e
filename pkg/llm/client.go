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
	"crypto/tls"

	"github.com/kadirpekel/agentcore/pkg/config"
	"github.com/kadirpekel/agentcore/pkg/httpclient"
)

// NewFromConfig builds the Client named by cfg.Provider. The returned
// Client is stateless and safe to share across sessions.
func NewFromConfig(cfg config.LLMConfig) (Client, error) {
	tlsCfg, err := tlsConfigFor(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.LLMProviderOpenAICompat:
		return NewOpenAICompatible(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens, cfg.MaxRetries, tlsCfg), nil
	default:
		return NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens, cfg.MaxRetries, tlsCfg), nil
	}
}

// tlsConfigFor builds the optional *tls.Config for self-hosted LLM
// gateways; nil when cfg requests no custom CA or insecure mode.
func tlsConfigFor(cfg config.LLMConfig) (*tls.Config, error) {
	if cfg.CACertificate == "" && !cfg.InsecureSkipVerify {
		return nil, nil
	}
	return httpclient.BuildTLSConfig(cfg.CACertificate, cfg.InsecureSkipVerify)
}
