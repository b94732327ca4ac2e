package ptc

import (
	"context"
	"log/slog"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
	"github.com/kadirpekel/agentcore/pkg/llm"
	"github.com/kadirpekel/agentcore/pkg/skill"
)

var temperatureDefault = 0.3

// Generator turns a natural-language task plus optional conversation
// context into a short program that invokes skills via
// executor.Execute(ctx, name, input), per spec.md §4.5.
type Generator struct {
	llmClient llm.Client
	registry  *skill.Registry
	logger    *slog.Logger
}

func New(llmClient llm.Client, registry *skill.Registry, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llmClient: llmClient, registry: registry, logger: logger}
}

// Generate runs both phases and returns the synthesized code.
func (g *Generator) Generate(ctx context.Context, task string, opts Options) (string, error) {
	metas := g.registry.List(nil)

	var restrict map[string]bool
	if len(opts.AvailableSkills) > 0 {
		restrict = make(map[string]bool, len(opts.AvailableSkills))
		for _, name := range opts.AvailableSkills {
			restrict[name] = true
		}
	}

	summaries := make([]SkillSummary, 0, len(metas))
	known := make(map[string]bool, len(metas))
	for _, m := range metas {
		if restrict != nil && !restrict[m.Name] {
			continue
		}
		summaries = append(summaries, SkillSummary{Name: m.Name, Description: m.Description})
		known[m.Name] = true
	}

	plan, err := g.plan(summaries, task, opts)
	if err != nil {
		return "", err
	}

	selected := filterKnownSkills(plan.SelectedSkills, known)
	g.logger.Debug("ptc plan", "task", task, "selected_skills", selected, "reasoning", plan.Reasoning)

	schemas := make([]SkillSchema, 0, len(selected))
	for _, name := range selected {
		def, err := g.registry.LoadFull(name)
		if err != nil {
			continue
		}
		schemas = append(schemas, SkillSchema{
			Name:         name,
			Description:  def.Metadata.Description,
			InputSchema:  def.InputSchema,
			OutputSchema: def.OutputSchema,
		})
	}

	return g.implement(schemas, task, opts)
}

func (g *Generator) plan(summaries []SkillSummary, task string, opts Options) (*Plan, error) {
	prompt := buildPlanPrompt(summaries, task, opts)

	resp, err := g.llmClient.Chat([]llm.Message{{Role: llm.RoleUser, Content: prompt}}, &llm.Options{Temperature: &temperatureDefault})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindLLM, "plan-phase LLM call failed", err)
	}

	return extractPlan(resp.Content)
}

func (g *Generator) implement(schemas []SkillSchema, task string, opts Options) (string, error) {
	prompt := buildImplementPrompt(schemas, task, opts)

	resp, err := g.llmClient.Chat([]llm.Message{{Role: llm.RoleUser, Content: prompt}}, &llm.Options{Temperature: &temperatureDefault})
	if err != nil {
		return "", coreerr.Wrap(coreerr.KindLLM, "implement-phase LLM call failed", err)
	}

	return extractCode(resp.Content)
}
