package reasoning

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/augur/pkg/domain/model"
)

type component struct {
	name     string
	keywords []string
}

var components = []component{
	{name: "File system operations", keywords: []string{"file", "directory", "folder", "read", "write"}},
	{name: "Network operations", keywords: []string{"http", "web", "url", "download", "fetch"}},
	{name: "Memory operations", keywords: []string{"memory", "store", "remember", "recall"}},
	{name: "Input operations", keywords: []string{"input", "ask", "prompt", "question"}},
}

const generalComponent = "General task processing"

var generationSteps = []string{
	"Matched task against known patterns",
	"Selected appropriate templates",
	"Applied task-specific parameters",
	"Generated structured code",
}

// Components lists the kinds of work task asks for, by keyword
func Components(task string) []string {
	lower := strings.ToLower(task)
	var out []string
	for _, c := range components {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, c.name)
				break
			}
		}
	}
	if len(out) == 0 {
		out = append(out, generalComponent)
	}
	return out
}

func briefJustification(task string) string {
	return fmt.Sprintf("Analyzed task: '%s' and generated appropriate code", task)
}

func justify(task, code string, symbols *model.SymbolTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task Analysis: '%s'\n\n", task)

	b.WriteString("Task Components:\n")
	for i, c := range Components(task) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}

	b.WriteString("\nCode Generation Process:\n")
	for i, step := range generationSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\nCode Explanation:\n")
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if s, ok := symbols.Lookup(line); ok {
			fmt.Fprintf(&b, "- %s: %s\n", s.Description, line)
		}
	}

	return b.String()
}
