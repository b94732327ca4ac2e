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

// Package sandbox implements the local Sandbox Adapter: one child `go run`
// process per session, running a generated program that wraps
// PTC-synthesized code and makes a skill.Executor available to it as
// `executor`.
package sandbox

// ErrorKind is the closed set of error kinds a Result can carry. The
// values equal the matching coreerr.Kind strings.
type ErrorKind string

const (
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindExecution ErrorKind = "execution"
)

// ResultError is the error shape embedded in a failed Result.
type ResultError struct {
	Kind    ErrorKind
	Message string
}

// Options configures one Execute call.
type Options struct {
	SessionID     string
	TimeoutMs     int64
	SkillImplPath string
	Env           map[string]string
}

// Result is the outcome of one Execute call.
type Result struct {
	Success         bool
	Stdout          string
	Stderr          string
	ExitCode        int
	Error           *ResultError
	ExecutionTimeMs int64
}
