package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

// ValidateCode checks that code carries the markers an executor needs. Code
// without an entry point is returned wrapped in one.
func ValidateCode(code string) (string, error) {
	if !strings.Contains(code, model.FunctionMarker) {
		return "", goerr.Wrap(model.ErrInvalidCode, "code has no function definition",
			goerr.V(model.ReasonKey, "missing "+model.FunctionMarker))
	}
	if !strings.Contains(code, model.ReturnMarker) && !strings.Contains(code, model.PrintMarker) {
		return "", goerr.Wrap(model.ErrInvalidCode, "code has neither return nor print",
			goerr.V(model.ReasonKey, "missing "+model.ReturnMarker+" or "+model.PrintMarker))
	}

	if !strings.Contains(code, model.EntryPoint) && !strings.Contains(code, model.Invocation) {
		code = fmt.Sprintf("ƒmain() {\n%s\n}\n\nmain();", code)
	}
	return code, nil
}

var fencePattern = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

// repairCode extracts the program from generator output that wrapped it in a
// markdown fence or surrounded it with prose.
func repairCode(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(line, model.FunctionMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimSpace(text)
	}

	end := len(lines) - 1
	for ; end > start; end-- {
		line := strings.TrimSpace(lines[end])
		if strings.HasSuffix(line, ";") || strings.HasSuffix(line, "}") {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines[start:end+1], "\n"))
}
