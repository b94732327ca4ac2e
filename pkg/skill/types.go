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

// Package skill implements the Skill Registry and Skill Executor: discovery
// and caching of skill metadata/definitions, and typed dispatch across the
// three skill kinds (pure-prompt, pure-script, hybrid).
package skill

// Kind is the closed set of skill kinds.
type Kind string

const (
	KindPurePrompt Kind = "pure-prompt"
	KindPureScript Kind = "pure-script"
	KindHybrid     Kind = "hybrid"
)

// Metadata is level-1 skill information, loaded at scan time.
type Metadata struct {
	Name        string   `yaml:"name" json:"name"`
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Kind        Kind     `yaml:"-" json:"kind"`
	Path        string   `yaml:"-" json:"path"`

	// tagSet mirrors Tags as a set for fast List(tagsFilter) intersection.
	tagSet map[string]struct{}
}

// hasAnyTag reports whether m's tag set intersects filter.
func (m *Metadata) hasAnyTag(filter []string) bool {
	if m.tagSet == nil {
		m.tagSet = make(map[string]struct{}, len(m.Tags))
		for _, t := range m.Tags {
			m.tagSet[t] = struct{}{}
		}
	}
	for _, f := range filter {
		if _, ok := m.tagSet[f]; ok {
			return true
		}
	}
	return false
}

// ExecutionDescriptor names the callable backing a pure-script/hybrid skill.
type ExecutionDescriptor struct {
	HandlerFile  string `yaml:"handler" json:"handlerFile"`
	FunctionName string `yaml:"function" json:"functionName"`
	TimeoutMs    int64  `yaml:"timeout" json:"timeoutMs"`
}

// Definition is level-2 skill information, parsed during Scan and cached.
type Definition struct {
	Metadata Metadata `json:"metadata"`

	InputSchema  map[string]interface{} `yaml:"input_schema" json:"inputSchema,omitempty"`
	OutputSchema map[string]interface{} `yaml:"output_schema" json:"outputSchema,omitempty"`

	// PromptTemplate is required for pure-prompt skills.
	PromptTemplate string `yaml:"prompt_template" json:"promptTemplate,omitempty"`

	// Execution is required for pure-script/hybrid skills.
	Execution *ExecutionDescriptor `yaml:"execution" json:"execution,omitempty"`

	// Checksum is the sha256 of the raw skill.yaml bytes. It is recorded
	// only; Reload re-parses every file regardless of it.
	Checksum string `json:"-"`
}

// ErrorKind is the closed set of error kinds a SkillResult can carry.
type ErrorKind string

const (
	ErrorKindValidation    ErrorKind = "Validation"
	ErrorKindSkillNotFound ErrorKind = "SkillNotFound"
	ErrorKindExecution     ErrorKind = "Execution"
)

// ResultError is the error shape embedded in a failed SkillResult.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Result is the outcome of one Executor.Execute call.
type Result struct {
	Success         bool         `json:"success"`
	Output          interface{}  `json:"output,omitempty"`
	Error           *ResultError `json:"error,omitempty"`
	ExecutionTimeMs int64        `json:"executionTimeMs"`
}
