package ptc

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultHistoryWindow = 5

func historyBlock(history []Message, window int) string {
	if len(history) == 0 {
		return ""
	}
	if window <= 0 {
		window = defaultHistoryWindow
	}
	start := 0
	if len(history) > window {
		start = len(history) - window
	}

	var b strings.Builder
	b.WriteString("<conversation_history>\n")
	for _, m := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("</conversation_history>\n\n")
	return b.String()
}

func variablesBlock(variables map[string]interface{}) string {
	if len(variables) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<available_variables>\n")
	for k, v := range variables {
		encoded, err := json.Marshal(v)
		if err != nil {
			encoded = []byte(fmt.Sprintf("%q", fmt.Sprintf("%v", v)))
		}
		fmt.Fprintf(&b, "%s: %s\n", k, encoded)
	}
	b.WriteString("</available_variables>\n\n")
	return b.String()
}

// buildPlanPrompt implements spec.md §4.5 Phase A's prompt assembly.
func buildPlanPrompt(skills []SkillSummary, task string, opts Options) string {
	var b strings.Builder

	b.WriteString("<available_skills>\n")
	for _, s := range skills {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
	}
	b.WriteString("</available_skills>\n\n")

	b.WriteString(historyBlock(opts.History, defaultHistoryWindow))
	b.WriteString(variablesBlock(opts.Variables))

	fmt.Fprintf(&b, "<task>\n%s\n</task>\n\n", task)

	b.WriteString("Select the skills (if any) needed to accomplish the task above. ")
	b.WriteString("Respond with a JSON object wrapped in a <plan> tag, with fields ")
	b.WriteString(`"selected_skills" (an array of skill names) and "reasoning" (a string). `)
	b.WriteString("Example:\n<plan>{\"selected_skills\": [\"skill-name\"], \"reasoning\": \"...\"}</plan>\n")

	return b.String()
}

// buildImplementPrompt implements spec.md §4.5 Phase B's prompt assembly.
func buildImplementPrompt(schemas []SkillSchema, task string, opts Options) string {
	var b strings.Builder

	b.WriteString("<skill_schemas>\n")
	for _, s := range schemas {
		inputSchema, _ := json.Marshal(s.InputSchema)
		outputSchema, _ := json.Marshal(s.OutputSchema)
		fmt.Fprintf(&b, "- %s: %s\n  input: %s\n  output: %s\n", s.Name, s.Description, inputSchema, outputSchema)
	}
	b.WriteString("</skill_schemas>\n\n")

	b.WriteString(historyBlock(opts.History, defaultHistoryWindow))
	b.WriteString(variablesBlock(opts.Variables))

	fmt.Fprintf(&b, "<task>\n%s\n</task>\n\n", task)

	b.WriteString("Write a short Go program body that accomplishes the task using the skills above, ")
	b.WriteString("calling executor.Execute(ctx, \"skill-name\", map[string]interface{}{...}) for each one. ")
	b.WriteString("Print the final result with fmt.Println and handle errors explicitly. ")
	b.WriteString("Emit exactly one code block, either fenced with ```go ... ``` or wrapped in <code>...</code>.\n")

	return b.String()
}
