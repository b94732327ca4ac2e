// Package ptc implements Programmatic Tool Calling: synthesizing a short
// program that invokes skills via executor.Execute(ctx, name, input), instead
// of asking the LLM to emit individual tool-call messages.
package ptc

// Plan is the transient output of Phase A. It is never persisted.
type Plan struct {
	SelectedSkills []string `json:"selected_skills"`
	Reasoning      string   `json:"reasoning"`
}

// Message is one turn of conversation history passed into synthesis.
type Message struct {
	Role    string
	Content string
}

// Options carries the optional context a caller threads into Generate.
type Options struct {
	History   []Message
	Variables map[string]interface{}
	Model     string

	// AvailableSkills restricts which registry skills Phase A may select
	// from. Empty means all discovered skills are available.
	AvailableSkills []string
}

// SkillSummary is what Phase A sees for each registry skill: name and
// description only, not the full schema.
type SkillSummary struct {
	Name        string
	Description string
}

// SkillSchema is what Phase B sees for each selected skill: the full
// input/output schema so the synthesized code can shape its arguments.
type SkillSchema struct {
	Name         string
	Description  string
	InputSchema  map[string]interface{}
	OutputSchema map[string]interface{}
}
