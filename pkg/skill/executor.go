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

package skill

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/kadirpekel/agentcore/pkg/skill/handlerplugin"
)

// Executor dispatches named skills with typed input, per spec.md §4.2.
// One Executor lives inside one sandbox child process for the lifetime of
// that process; it is not shared across sessions.
type Executor struct {
	registry *Registry
	logger   *slog.Logger

	pluginsMu sync.Mutex
	plugins   map[string]*goplugin.Client // keyed by absolute handlerFile path
}

// NewExecutor builds an Executor bound to registry.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry: registry,
		logger:   logger,
		plugins:  make(map[string]*goplugin.Client),
	}
}

// Execute runs skill name with input, exactly per spec.md §4.2 steps 1-6.
// ctx is accepted but not used: pure-prompt rendering and handler
// dispatch (pure-script/hybrid) both run to completion regardless of it.
func (e *Executor) Execute(ctx context.Context, name string, input map[string]interface{}) Result {
	start := time.Now()

	def, err := e.registry.LoadFull(name)
	if err != nil {
		return Result{
			Success: false,
			Error:   &ResultError{Kind: ErrorKindSkillNotFound, Message: err.Error()},
		}
	}

	if err := validateInput(def, input); err != nil {
		return Result{
			Success:         false,
			Error:           &ResultError{Kind: ErrorKindValidation, Message: err.Error()},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}
	}

	var output interface{}
	switch def.Metadata.Kind {
	case KindPurePrompt:
		output = map[string]interface{}{
			"kind":    "prompt",
			"content": renderPromptTemplate(def.PromptTemplate, input),
		}
	case KindPureScript, KindHybrid:
		output, err = e.dispatchHandler(ctx, def, input)
	default:
		err = fmt.Errorf("unknown skill kind %q", def.Metadata.Kind)
	}

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return Result{
			Success:         false,
			Error:           &ResultError{Kind: ErrorKindExecution, Message: err.Error()},
			ExecutionTimeMs: elapsed,
		}
	}

	return Result{Success: true, Output: output, ExecutionTimeMs: elapsed}
}

// dispatchHandler launches (or reuses) a net/rpc subprocess plugin for
// def's handler binary and invokes its named function, per spec.md §9's
// "dynamic code loading ... resolve the handler path relative to the
// skill directory" requirement.
func (e *Executor) dispatchHandler(_ context.Context, def *Definition, input map[string]interface{}) (interface{}, error) {
	handlerPath := filepath.Join(def.Metadata.Path, def.Execution.HandlerFile)

	client, err := e.pluginClient(handlerPath)
	if err != nil {
		return nil, err
	}

	rpcClient, err := client.Client()
	if err != nil {
		return nil, fmt.Errorf("connecting to handler %s: %w", handlerPath, err)
	}
	raw, err := rpcClient.Dispense("handler")
	if err != nil {
		return nil, fmt.Errorf("dispensing handler %s: %w", handlerPath, err)
	}
	handler, ok := raw.(handlerplugin.Handler)
	if !ok {
		return nil, fmt.Errorf("handler %s does not implement the expected interface", handlerPath)
	}

	return handler.Call(def.Execution.FunctionName, input)
}

// pluginClient returns the cached go-plugin client for handlerPath,
// launching the handler binary on first use. The client is cached for the
// lifetime of the Executor (i.e. the sandbox child's lifetime).
func (e *Executor) pluginClient(handlerPath string) (*goplugin.Client, error) {
	e.pluginsMu.Lock()
	defer e.pluginsMu.Unlock()

	if c, ok := e.plugins[handlerPath]; ok {
		return c, nil
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: handlerplugin.Handshake,
		Plugins:         handlerplugin.PluginMap,
		Cmd:             exec.Command(handlerPath),
		AllowedProtocols: []goplugin.Protocol{
			goplugin.ProtocolNetRPC,
		},
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "skill-plugin",
			Level:  hclog.Warn,
			Output: os.Stderr,
		}),
	})
	e.plugins[handlerPath] = client
	return client, nil
}

// Close terminates every cached handler subprocess. Called when the
// sandbox child itself is shutting down.
func (e *Executor) Close() {
	e.pluginsMu.Lock()
	defer e.pluginsMu.Unlock()
	for _, c := range e.plugins {
		c.Kill()
	}
	e.plugins = make(map[string]*goplugin.Client)
}
