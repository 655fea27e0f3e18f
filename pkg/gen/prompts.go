package gen

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type promptPair struct {
	System  string `yaml:"system_prompt"`
	Message string `yaml:"message_prompt"`
}

// Prompts holds per-stage prompt templates keyed by stage name. Templates
// use {placeholder} markers substituted at render time.
type Prompts struct {
	stages map[string]promptPair
}

// LoadPrompts reads the stage prompt templates from a YAML file.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Msg: "read prompts file", Err: err}
	}

	stages := make(map[string]promptPair)
	if err := yaml.Unmarshal(data, &stages); err != nil {
		return nil, &ConfigurationError{Msg: "parse prompts file", Err: err}
	}

	return &Prompts{stages: stages}, nil
}

// Render substitutes the stage's templates with params. Unknown stages are a
// ConfigurationError. Callers default every optional key to empty before
// rendering, so a sparse request never leaves a placeholder dangling;
// literal braces in the template (JSON output examples) pass through.
func (p *Prompts) Render(stage string, params map[string]string) (system, message string, err error) {
	pair, ok := p.stages[stage]
	if !ok {
		return "", "", &ConfigurationError{Msg: fmt.Sprintf("no prompt template for stage %q", stage)}
	}

	return substitute(pair.System, params), substitute(pair.Message, params), nil
}

func substitute(template string, params map[string]string) string {
	out := template
	for key, value := range params {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
