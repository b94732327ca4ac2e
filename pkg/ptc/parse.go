package ptc

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
)

var (
	planTagPattern  = regexp.MustCompile(`(?s)<plan>(.*?)</plan>`)
	fencedCodeBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\n?(.*?)```")
	codeTagPattern  = regexp.MustCompile(`(?s)<code>(.*?)</code>`)
)

// extractPlan implements spec.md §4.5 Phase A's response parsing: pull the
// <plan>...</plan> block, then decode its JSON. Parse failure at either
// step is a PTCError{kind:Planning}.
func extractPlan(response string) (*Plan, error) {
	match := planTagPattern.FindStringSubmatch(response)
	if match == nil {
		return nil, coreerr.New(coreerr.KindPlanning, "no <plan> block found in plan-phase response")
	}

	var plan Plan
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &plan); err != nil {
		return nil, coreerr.Wrap(coreerr.KindPlanning, "plan block is not valid JSON", err)
	}
	return &plan, nil
}

// extractCode implements spec.md §4.5 Phase B's response parsing:
// fenced code block first, then <code>...</code>, else
// PTCError{kind:Synthesis}.
func extractCode(response string) (string, error) {
	if match := fencedCodeBlock.FindStringSubmatch(response); match != nil {
		return strings.TrimSpace(match[1]), nil
	}
	if match := codeTagPattern.FindStringSubmatch(response); match != nil {
		return strings.TrimSpace(match[1]), nil
	}
	return "", coreerr.New(coreerr.KindSynthesis, "no fenced code block or <code> block found in implement-phase response")
}

// filterKnownSkills drops any selected skill name the registry doesn't
// recognize, silently, per spec.md §4.5. An empty result is valid.
func filterKnownSkills(selected []string, known map[string]bool) []string {
	filtered := make([]string, 0, len(selected))
	for _, name := range selected {
		if known[name] {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
