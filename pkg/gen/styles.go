package gen

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
)

// StyleBank holds categorized writing samples used to steer flair edits.
type StyleBank struct {
	categories map[string][]string
	rng        *rand.Rand
}

func LoadStyleBank(path string) (*StyleBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Msg: "read style examples", Err: err}
	}

	var raw map[string]struct {
		Examples []string `json:"examples"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Msg: "parse style examples", Err: err}
	}

	categories := make(map[string][]string, len(raw))
	for name, entry := range raw {
		if len(entry.Examples) > 0 {
			categories[name] = entry.Examples
		}
	}
	if len(categories) == 0 {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("no style examples in %s", path)}
	}
	return &StyleBank{categories: categories}, nil
}

// Sample returns up to n examples per category, drawn without replacement.
func (b *StyleBank) Sample(n int) map[string][]string {
	out := make(map[string][]string, len(b.categories))
	for name, examples := range b.categories {
		picked := make([]string, len(examples))
		copy(picked, examples)
		b.shuffle(picked)
		if len(picked) > n {
			picked = picked[:n]
		}
		out[name] = picked
	}
	return out
}

// InstructionsBlock renders sampled examples as prompt text, one section
// per category in stable order.
func (b *StyleBank) InstructionsBlock(n int) string {
	sampled := b.Sample(n)

	names := make([]string, 0, len(sampled))
	for name := range sampled {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("Examples of %s:\n", strings.ReplaceAll(name, "_", " ")))
		for _, example := range sampled[name] {
			sb.WriteString("- ")
			sb.WriteString(example)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func (b *StyleBank) shuffle(s []string) {
	swap := func(i, j int) { s[i], s[j] = s[j], s[i] }
	if b.rng != nil {
		b.rng.Shuffle(len(s), swap)
		return
	}
	rand.Shuffle(len(s), swap)
}
