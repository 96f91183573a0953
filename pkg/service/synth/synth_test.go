package synth_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/service/synth"
)

func TestFill(t *testing.T) {
	testCases := map[string]struct {
		tmpl     string
		captures map[string]string
		want     string
	}{
		"single capture": {
			tmpl:     "Hello {{name}}",
			captures: map[string]string{"name": "World"},
			want:     "Hello World",
		},
		"missing capture is kept": {
			tmpl:     "{{missing}}",
			captures: map[string]string{"name": "World"},
			want:     "{{missing}}",
		},
		"repeated placeholder": {
			tmpl:     "{{a}}-{{a}}-{{b}}",
			captures: map[string]string{"a": "x", "b": "y"},
			want:     "x-x-y",
		},
		"nil captures": {
			tmpl: "{{a}}",
			want: "{{a}}",
		},
		"value containing braces is not expanded again": {
			tmpl:     "{{a}}",
			captures: map[string]string{"a": "{{b}}", "b": "no"},
			want:     "{{b}}",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, synth.Fill(tc.tmpl, tc.captures)).Equal(tc.want)
		})
	}
}

func TestSynthesizer_Render(t *testing.T) {
	s := synth.New()

	t.Run("wraps code without entry point", func(t *testing.T) {
		got := s.Render("greet the world", model.PatternMatch{
			RuleID:   "greet",
			Template: `⌽("Hello {{name}}");`,
			Captures: map[string]string{"name": "World"},
		})
		gt.Value(t, got).Equal("ƒmain() {\n    // Task: greet the world\n    ⌽(\"Hello World\");\n    \n    ⟼(\"Task completed\");\n}\n\nmain();")
	})

	t.Run("keeps code with entry point", func(t *testing.T) {
		code := "ƒmain() {\n    ⌽(\"{{x}}\");\n}\n\nmain();"
		got := s.Render("own", model.PatternMatch{RuleID: "own", Template: code, Captures: map[string]string{"x": "1"}})
		gt.Value(t, got).Equal("ƒmain() {\n    ⌽(\"1\");\n}\n\nmain();")
	})

	t.Run("entry point inside a capture still wraps", func(t *testing.T) {
		tmpl, ok := synth.DefaultTemplate(synth.TemplateHTTPGet)
		gt.Bool(t, ok).True().Required()

		got := s.Render("fetch http://h/main()", model.PatternMatch{
			RuleID:   "http_get",
			Template: tmpl,
			Captures: map[string]string{"url": "http://h/main()"},
		})
		gt.Bool(t, strings.HasPrefix(got, model.EntryPoint)).True()
		gt.String(t, got).Contains(`↗("http://h/main()")`)
		gt.Number(t, strings.Count(got, model.EntryPoint)).Equal(1)
	})
}

func TestSynthesizer_RenderGeneric(t *testing.T) {
	got := synth.New().RenderGeneric("do something")
	gt.Value(t, got).Equal("ƒmain() {\n    // Task: do something\n    ⌽(\"Starting task: do something\");\n    \n    ⟼(\"Task completed\");\n}\n\nmain();")
}

func TestSynthesizer_RenderCombined(t *testing.T) {
	got := synth.New().RenderCombined("two things", []model.PatternMatch{
		{RuleID: "first", Template: `⌽("{{a}}");`, Captures: map[string]string{"a": "A"}},
		{RuleID: "second", Template: `📝("k", "v");`},
	})

	want := "ƒmain() {\n" +
		"// Task: two things\n" +
		"\n// Pattern match 1 (first)\n⌽(\"A\");\n" +
		"\n// Pattern match 2 (second)\n📝(\"k\", \"v\");\n" +
		"\n    \n    ⟼(\"Task completed\");\n}\n\nmain();"
	gt.Value(t, got).Equal(want)
	gt.Number(t, strings.Count(got, model.EntryPoint)).Equal(1)
}

func TestSynthesizer_Templates(t *testing.T) {
	s := synth.New()

	for _, name := range synth.DefaultTemplateNames() {
		tmpl, ok := s.Template(name)
		gt.Bool(t, ok).True()
		gt.String(t, tmpl).NotEqual("")
	}

	tmpl, ok := s.Template(synth.TemplateListFiles)
	gt.Bool(t, ok).True()
	gt.String(t, tmpl).Contains(`📂("{{path}}")`)

	s.SetTemplate(synth.TemplateListFiles, "changed")
	tmpl, _ = s.Template(synth.TemplateListFiles)
	gt.Value(t, tmpl).Equal("changed")

	t.Run("instances do not share templates", func(t *testing.T) {
		fresh, _ := synth.New().Template(synth.TemplateListFiles)
		gt.String(t, fresh).NotEqual("changed")
	})

	_, ok = s.Template("unknown")
	gt.Bool(t, ok).False()

	t.Run("names are sorted and include registered ones", func(t *testing.T) {
		s := synth.New()
		s.SetTemplate("aaa_custom", "⌽(\"a\");")
		gt.Value(t, s.TemplateNames()).Equal([]string{
			"aaa_custom",
			synth.TemplateGetInput,
			synth.TemplateHTTPGet,
			synth.TemplateListFiles,
			synth.TemplateStoreMemory,
		})
	})
}
