package synth

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/secmon-lab/augur/pkg/domain/model"
)

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

const (
	wrapTemplate     = "ƒmain() {\n    // Task: %s\n    %s\n    \n    ⟼(\"Task completed\");\n}\n\nmain();"
	genericTemplate  = "ƒmain() {\n    // Task: %s\n    ⌽(\"Starting task: %s\");\n    \n    ⟼(\"Task completed\");\n}\n\nmain();"
	combinedTemplate = "ƒmain() {\n%s\n    \n    ⟼(\"Task completed\");\n}\n\nmain();"
)

// Synthesizer turns pattern matches into program text. It also keeps the
// named templates that configured rules may refer to by name.
type Synthesizer struct {
	mu        sync.RWMutex
	templates map[string]string
}

// New returns a Synthesizer seeded with the built-in templates
func New() *Synthesizer {
	return &Synthesizer{templates: maps.Clone(defaultTemplates)}
}

// Fill replaces every {{name}} in tmpl with captures[name]. Unknown
// placeholders are kept verbatim.
func Fill(tmpl string, captures map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := captures[name]; ok {
			return v
		}
		return m
	})
}

func hasEntryPoint(code string) bool {
	return strings.Contains(code, model.EntryPoint) || strings.Contains(code, model.Invocation)
}

// Render fills the template of match and wraps it in an entry point for task
// when the template has none. Only the template is inspected, so captured
// values never decide the wrapping.
func (s *Synthesizer) Render(task string, match model.PatternMatch) string {
	code := Fill(match.Template, match.Captures)
	if hasEntryPoint(match.Template) {
		return code
	}
	return fmt.Sprintf(wrapTemplate, task, code)
}

// RenderGeneric returns the skeleton used when no rule matched task
func (s *Synthesizer) RenderGeneric(task string) string {
	return fmt.Sprintf(genericTemplate, task, task)
}

// RenderCombined concatenates every match under a single entry point
func (s *Synthesizer) RenderCombined(task string, matches []model.PatternMatch) string {
	var b strings.Builder
	b.WriteString("// Task: " + task + "\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "\n// Pattern match %d (%s)\n%s\n", i+1, m.RuleID, Fill(m.Template, m.Captures))
	}
	return fmt.Sprintf(combinedTemplate, b.String())
}

// Template returns the named template
func (s *Synthesizer) Template(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	return t, ok
}

// SetTemplate registers or replaces the named template
func (s *Synthesizer) SetTemplate(name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = text
}

// TemplateNames returns the registered template names, sorted
func (s *Synthesizer) TemplateNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.templates))
}
