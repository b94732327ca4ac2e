package ptc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
)

func TestExtractPlan_Valid(t *testing.T) {
	plan, err := extractPlan(`some preamble\n<plan>{"selected_skills": ["a", "b"], "reasoning": "why"}</plan>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, plan.SelectedSkills)
	assert.Equal(t, "why", plan.Reasoning)
}

func TestExtractPlan_MissingTag(t *testing.T) {
	_, err := extractPlan("no tag here")
	require.Error(t, err)
	assert.True(t, coreerr.Is(err, coreerr.KindPlanning))
}

func TestExtractPlan_MalformedJSON(t *testing.T) {
	_, err := extractPlan("<plan>{not json}</plan>")
	require.Error(t, err)
	assert.True(t, coreerr.Is(err, coreerr.KindPlanning))
}

func TestExtractCode_FencedBlockPreferred(t *testing.T) {
	code, err := extractCode("text\n```go\nfmt.Println(1)\n```\n<code>ignored</code>")
	require.NoError(t, err)
	assert.Equal(t, "fmt.Println(1)", code)
}

func TestExtractCode_FallsBackToCodeTag(t *testing.T) {
	code, err := extractCode("<code>fmt.Println(2)</code>")
	require.NoError(t, err)
	assert.Equal(t, "fmt.Println(2)", code)
}

func TestExtractCode_NeitherPresent(t *testing.T) {
	_, err := extractCode("nothing useful")
	require.Error(t, err)
	assert.True(t, coreerr.Is(err, coreerr.KindSynthesis))
}

func TestFilterKnownSkills_DropsUnknown(t *testing.T) {
	known := map[string]bool{"a": true}
	filtered := filterKnownSkills([]string{"a", "b", "c"}, known)
	assert.Equal(t, []string{"a"}, filtered)
}
