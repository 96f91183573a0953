package pattern

import (
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/domain/types"
	"github.com/secmon-lab/augur/pkg/service/synth"
)

func builtin(id, expr string, priority int, tags []string, description string) model.PatternRule {
	tmpl, _ := synth.DefaultTemplate(id)
	return model.PatternRule{
		ID:          types.RuleID(id),
		Expression:  expr,
		Priority:    priority,
		Tags:        tags,
		Template:    tmpl,
		Description: description,
	}
}

// BuiltinRules returns the rules shipped with augur, one per built-in template
func BuiltinRules() []model.PatternRule {
	return []model.PatternRule{
		builtin(synth.TemplateListFiles, `(?i)list (?:all )?(?:the )?files in (?P<path>\S+)`, 80,
			[]string{"file"}, "List the files of a directory"),
		builtin(synth.TemplateHTTPGet, `(?i)(?:fetch|get|download)\s+(?P<url>https?://\S+)`, 70,
			[]string{"network"}, "Fetch a URL and print the status code"),
		builtin(synth.TemplateStoreMemory, `(?i)(?:remember|store)\s+(?P<key>\w+)\s+(?:as|=|is)\s+(?P<value>.+)`, 60,
			[]string{"memory"}, "Store a value in memory"),
		builtin(synth.TemplateGetInput, `(?i)ask (?:the user )?(?:for )?(?P<prompt>.+)`, 50,
			[]string{"input"}, "Ask the user for input"),
	}
}
