package skill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_PurePromptRendersTemplate(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "summarize", `
name: summarize
type: pure-prompt
prompt_template: "Summarize: {{content}}"
`)
	reg := New(dir, nil)
	exec := NewExecutor(reg, nil)

	result := exec.Execute(context.Background(), "summarize", map[string]interface{}{"content": "hello world"})
	require.True(t, result.Success)
	require.Nil(t, result.Error)

	out, ok := result.Output.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Summarize: hello world", out["content"])
}

func TestExecutor_SkillNotFound(t *testing.T) {
	dir := t.TempDir()
	reg := New(dir, nil)
	exec := NewExecutor(reg, nil)

	result := exec.Execute(context.Background(), "missing", map[string]interface{}{})
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrorKindSkillNotFound, result.Error.Kind)
}

func TestExecutor_ValidationErrorOnMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "summarize", `
name: summarize
type: pure-prompt
prompt_template: "Summarize: {{content}}"
input_schema:
  type: object
  required: ["content"]
  properties:
    content:
      type: string
`)
	reg := New(dir, nil)
	exec := NewExecutor(reg, nil)

	result := exec.Execute(context.Background(), "summarize", map[string]interface{}{})
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrorKindValidation, result.Error.Kind)
}

func TestExecutor_UnknownKeyLeftLiteralInTemplate(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "greet", `
name: greet
type: pure-prompt
prompt_template: "Hi {{name}}, {{unknown}}"
`)
	reg := New(dir, nil)
	exec := NewExecutor(reg, nil)

	result := exec.Execute(context.Background(), "greet", map[string]interface{}{"name": "Ada"})
	require.True(t, result.Success)
	out := result.Output.(map[string]interface{})
	assert.Equal(t, "Hi Ada, {{unknown}}", out["content"])
}
