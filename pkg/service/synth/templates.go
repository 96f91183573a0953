package synth

// Names of the built-in templates
const (
	TemplateListFiles   = "list_files"
	TemplateHTTPGet     = "http_get"
	TemplateStoreMemory = "store_memory"
	TemplateGetInput    = "get_input"
)

var defaultTemplates = map[string]string{
	TemplateListFiles: `ιfiles = 📂("{{path}}");
∀(files, λfile {
    ⌽(file);
});`,
	TemplateHTTPGet: `ιresponse = ↗("{{url}}");
⌽(` + "`Status code: ${response.s}`" + `);
ιcontent = response.b;`,
	TemplateStoreMemory: `📝("{{key}}", "{{value}}");`,
	TemplateGetInput: `📤("prompt.txt", "{{prompt}}");
ιinput_ready = 📩("response.txt", "30000");
if (input_ready == "true") {
    ιuser_input = 📥("response.txt");
}`,
}

// DefaultTemplate returns the built-in template text registered as name
func DefaultTemplate(name string) (string, bool) {
	t, ok := defaultTemplates[name]
	return t, ok
}

// DefaultTemplateNames returns the names of the built-in templates
func DefaultTemplateNames() []string {
	return []string{TemplateListFiles, TemplateHTTPGet, TemplateStoreMemory, TemplateGetInput}
}
