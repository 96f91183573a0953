package usecase

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

//go:embed prompt/plan.md
var planPromptTmpl string

var planPrompt = template.Must(template.New("plan").Parse(planPromptTmpl))

// FormatContext renders past executions for the generative prompt
func FormatContext(records []*model.EpisodicRecord) string {
	if len(records) == 0 {
		return "No relevant previous executions found."
	}

	var b strings.Builder
	b.WriteString("Previous relevant executions:\n\n")
	for i, r := range records {
		fmt.Fprintf(&b, "Execution %d:\n", i+1)
		fmt.Fprintf(&b, "- Task: %s\n", r.Task)
		fmt.Fprintf(&b, "- Code:\n```\n%s\n```\n", r.Code)
		fmt.Fprintf(&b, "- Result: %s\n\n", r.Result)
	}
	return b.String()
}

// BuildPrompt renders the prompt sent to the generator
func BuildPrompt(systemPrompt, task string, records []*model.EpisodicRecord, vars map[string]string) (string, error) {
	data := struct {
		SystemPrompt string
		Task         string
		Context      string
		Vars         map[string]string
	}{
		SystemPrompt: systemPrompt,
		Task:         task,
		Context:      FormatContext(records),
		Vars:         vars,
	}

	var buf bytes.Buffer
	if err := planPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render plan prompt", goerr.V(model.TaskKey, task))
	}
	return buf.String(), nil
}
