package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/domain/types"
	"github.com/secmon-lab/augur/pkg/service/memory"
	"github.com/secmon-lab/augur/pkg/service/pattern"
	"github.com/secmon-lab/augur/pkg/service/reasoning"
	"github.com/secmon-lab/augur/pkg/service/synth"
	"github.com/secmon-lab/augur/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const DefaultSearchLimit = 10

// AppConfig represents the application configuration
type AppConfig struct {
	Memory    MemoryConfig    `toml:"memory"`
	Reasoning ReasoningConfig `toml:"reasoning"`
	Planner   PlannerConfig   `toml:"planner"`
	Templates []Template      `toml:"template"`
	Patterns  []Pattern       `toml:"pattern"`
}

// MemoryConfig bounds the memory service. Zero values select the defaults.
type MemoryConfig struct {
	MaxVectors   int `toml:"max_vectors"`
	MaxFacts     int `toml:"max_facts"`
	ContextLimit int `toml:"context_limit"`
	SearchLimit  int `toml:"search_limit"`
}

type ReasoningConfig struct {
	MaxHistory int `toml:"max_history"`
	// BuiltinPatterns loads the shipped rules ahead of configured ones. Nil means true.
	BuiltinPatterns *bool `toml:"builtin_patterns"`
}

type PlannerConfig struct {
	SystemPrompt string `toml:"system_prompt"`
}

// Template registers named template text that patterns can refer to with
// template_name. A name equal to a built-in template replaces it.
type Template struct {
	Name string `toml:"name"`
	Text string `toml:"text"`
}

// Pattern represents a pattern rule configuration. Exactly one of Template
// and TemplateName must be set.
type Pattern struct {
	ID           string   `toml:"id"`
	Regex        string   `toml:"regex"`
	Priority     int      `toml:"priority"`
	Tags         []string `toml:"tags"`
	Template     string   `toml:"template"`
	TemplateName string   `toml:"template_name"`
	Description  string   `toml:"description"`
}

// ToRule converts the configuration into a domain rule, resolving
// TemplateName through s
func (p *Pattern) ToRule(s *synth.Synthesizer) (model.PatternRule, error) {
	rule := model.PatternRule{
		ID:          types.RuleID(p.ID),
		Expression:  p.Regex,
		Priority:    p.Priority,
		Tags:        p.Tags,
		Template:    p.Template,
		Description: p.Description,
	}
	if p.TemplateName != "" {
		tmpl, ok := s.Template(p.TemplateName)
		if !ok {
			return model.PatternRule{}, goerr.Wrap(ErrUnknownTemplate, "pattern refers to unknown template",
				goerr.V(PatternIDKey, p.ID),
				goerr.V(TemplateNameKey, p.TemplateName),
			)
		}
		rule.Template = tmpl
	}
	return rule, nil
}

// Validate checks if the Pattern compiles and its template resolves in s
func (p *Pattern) Validate(s *synth.Synthesizer) error {
	switch {
	case p.Template == "" && p.TemplateName == "":
		return goerr.Wrap(ErrInvalidConfig, "pattern template is required", goerr.V(PatternIDKey, p.ID))
	case p.Template != "" && p.TemplateName != "":
		return goerr.Wrap(ErrInvalidConfig, "template and template_name are exclusive", goerr.V(PatternIDKey, p.ID))
	}

	rule, err := p.ToRule(s)
	if err != nil {
		return err
	}
	if _, err := pattern.Compile(rule); err != nil {
		return goerr.Wrap(err, "invalid pattern", goerr.V(PatternIDKey, p.ID))
	}
	return nil
}

// DefaultAppConfig returns the configuration used without a config file
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Memory: MemoryConfig{
			MaxVectors:   memory.DefaultMaxVectors,
			MaxFacts:     memory.DefaultMaxFacts,
			ContextLimit: usecase.DefaultContextLimit,
			SearchLimit:  DefaultSearchLimit,
		},
		Reasoning: ReasoningConfig{
			MaxHistory: reasoning.DefaultMaxHistory,
		},
	}
}

func checkLimit(name string, v int) error {
	if v < 0 {
		return goerr.Wrap(ErrInvalidLimit, "invalid limit", goerr.V(FieldKey, name), goerr.V("value", v))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"memory.max_vectors", a.Memory.MaxVectors},
		{"memory.max_facts", a.Memory.MaxFacts},
		{"memory.context_limit", a.Memory.ContextLimit},
		{"memory.search_limit", a.Memory.SearchLimit},
		{"reasoning.max_history", a.Reasoning.MaxHistory},
	}
	for _, l := range limits {
		if err := checkLimit(l.name, l.value); err != nil {
			return err
		}
	}

	templateNames := make(map[string]bool)
	for i, tmpl := range a.Templates {
		if tmpl.Name == "" || tmpl.Text == "" {
			return goerr.Wrap(ErrInvalidConfig, "template needs a name and text", goerr.V(TemplateIndexKey, i))
		}
		if templateNames[tmpl.Name] {
			return goerr.Wrap(ErrInvalidConfig, "template name already defined",
				goerr.V(TemplateNameKey, tmpl.Name),
				goerr.V(TemplateIndexKey, i),
			)
		}
		templateNames[tmpl.Name] = true
	}

	s := a.Synthesizer()
	patternIDs := make(map[string]bool)
	if a.BuiltinPatternsEnabled() {
		for _, r := range pattern.BuiltinRules() {
			patternIDs[string(r.ID)] = true
		}
	}
	for i, p := range a.Patterns {
		if err := p.Validate(s); err != nil {
			return goerr.Wrap(err, "invalid pattern", goerr.V(PatternIndexKey, i))
		}
		if patternIDs[p.ID] {
			return goerr.Wrap(ErrDuplicatePatternID, "pattern ID already defined",
				goerr.V(PatternIDKey, p.ID),
				goerr.V(PatternIndexKey, i),
			)
		}
		patternIDs[p.ID] = true
	}

	return nil
}

// BuiltinPatternsEnabled reports whether the shipped rules are loaded
func (a *AppConfig) BuiltinPatternsEnabled() bool {
	return a.Reasoning.BuiltinPatterns == nil || *a.Reasoning.BuiltinPatterns
}

// Synthesizer returns a synthesizer holding the built-in templates plus the
// configured ones
func (a *AppConfig) Synthesizer() *synth.Synthesizer {
	s := synth.New()
	for _, tmpl := range a.Templates {
		s.SetTemplate(tmpl.Name, tmpl.Text)
	}
	return s
}

// Rules returns the built-in rules, when enabled, followed by configured
// ones. Template names are resolved through s.
func (a *AppConfig) Rules(s *synth.Synthesizer) ([]model.PatternRule, error) {
	var rules []model.PatternRule
	if a.BuiltinPatternsEnabled() {
		rules = append(rules, pattern.BuiltinRules()...)
	}
	for _, p := range a.Patterns {
		rule, err := p.ToRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LogValue implements slog.LogValuer
func (a *AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("max_vectors", a.Memory.MaxVectors),
		slog.Int("max_facts", a.Memory.MaxFacts),
		slog.Int("context_limit", a.Memory.ContextLimit),
		slog.Int("max_history", a.Reasoning.MaxHistory),
		slog.Bool("builtin_patterns", a.BuiltinPatternsEnabled()),
		slog.Int("templates", len(a.Templates)),
		slog.Int("patterns", len(a.Patterns)),
	)
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// Values missing from the file keep their defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultAppConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}

// App holds the --config flag
type App struct {
	path string
}

func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("AUGUR_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the configuration file, or returns the defaults when no
// file is given
func (a *App) Configure() (*AppConfig, error) {
	if a.path == "" {
		return DefaultAppConfig(), nil
	}
	return LoadAppConfiguration(a.path)
}
