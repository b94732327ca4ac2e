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

// Package handlerplugin defines the subprocess RPC contract for
// pure-script/hybrid skill handlers. It generalizes the teacher's
// hashicorp/go-plugin gRPC loader to a net/rpc transport, since handler
// binaries are built ahead of time (no .proto compilation step available
// here): a handler process exposes one RPC method, Call, taking a
// function name and a JSON-shaped input and returning a JSON-shaped
// output or an error message.
package handlerplugin

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// Handshake is the magic-cookie handshake every handler binary and the
// Skill Executor must agree on before a connection is trusted.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "AGENTCORE_SKILL_HANDLER",
	MagicCookieValue: "skill-handler-v1",
}

// PluginMap is the set of plugin names go-plugin's client dispenses.
// Handler binaries register exactly one plugin under this key.
var PluginMap = map[string]plugin.Plugin{
	"handler": &HandlerPlugin{},
}

// Handler is implemented by a skill handler binary's RPC server side.
type Handler interface {
	// Call invokes functionName with input and returns its result, or an
	// error if the function is unknown or panics/fails internally.
	Call(functionName string, input map[string]interface{}) (interface{}, error)
}

// CallRequest is the net/rpc request envelope.
type CallRequest struct {
	FunctionName string
	Input        map[string]interface{}
}

// CallResponse is the net/rpc response envelope. ErrMsg is non-empty when
// the handler returned an error; net/rpc itself is reserved for transport
// failures (broken pipe, etc).
type CallResponse struct {
	Output interface{}
	ErrMsg string
}

// HandlerPlugin implements plugin.Plugin for the net/rpc transport.
type HandlerPlugin struct {
	// Impl is set on the handler-binary side only.
	Impl Handler
}

func (p *HandlerPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &rpcServer{impl: p.Impl}, nil
}

func (p *HandlerPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcClient{client: c}, nil
}

// rpcServer runs inside the handler binary.
type rpcServer struct {
	impl Handler
}

func (s *rpcServer) Call(req CallRequest, resp *CallResponse) error {
	out, err := s.impl.Call(req.FunctionName, req.Input)
	if err != nil {
		resp.ErrMsg = err.Error()
		return nil
	}
	resp.Output = out
	return nil
}

// rpcClient runs inside the Skill Executor's process.
type rpcClient struct {
	client *rpc.Client
}

func (c *rpcClient) Call(functionName string, input map[string]interface{}) (interface{}, error) {
	var resp CallResponse
	if err := c.client.Call("Plugin.Call", CallRequest{FunctionName: functionName, Input: input}, &resp); err != nil {
		return nil, err
	}
	if resp.ErrMsg != "" {
		return nil, &handlerError{resp.ErrMsg}
	}
	return resp.Output, nil
}

type handlerError struct{ msg string }

func (e *handlerError) Error() string { return e.msg }

// Serve is called by a handler binary's main() to start serving Impl over
// the net/rpc transport. It blocks until the parent process disconnects.
func Serve(impl Handler) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			"handler": &HandlerPlugin{Impl: impl},
		},
	})
}
