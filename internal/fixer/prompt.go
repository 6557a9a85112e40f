// Package fixer provides the corrective-step collaborators the convergence
// loop invokes: a coding-agent subprocess and a direct API fixer. Both are
// opaque to the engine, which only observes the transcript and the mutated
// working copy.
package fixer

import (
	"fmt"
	"strings"

	"github.com/tabtidy/tabtidy/internal/converge"
	"github.com/tabtidy/tabtidy/internal/rules"
)

// budgetMarkers are the transcript phrases that signal the corrective step
// ran out of turn or output budget. Detection is the only transcript parsing
// the engine does.
var budgetMarkers = []string{
	"budget exhausted",
	"turn limit reached",
	"max turns reached",
	"output limit reached",
}

// BudgetExhausted scans transcript lines for budget markers.
func BudgetExhausted(transcript []string) bool {
	for _, line := range transcript {
		lower := strings.ToLower(line)
		for _, marker := range budgetMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}

// BuildPrompt renders a fix request as the prompt text handed to the
// corrective step: pass instructions first, then the violation list grouped
// by category. The list arrives pre-capped by the controller.
func BuildPrompt(req *converge.FixRequest) string {
	var b strings.Builder
	b.WriteString(req.Instructions)
	fmt.Fprintf(&b, "\nWorkbook file: %s\n", req.WorkingCopy)

	if len(req.Violations) == 0 {
		b.WriteString("\nThe rule check found no violations this pass.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nViolations to fix (%d):\n", len(req.Violations))
	for _, cat := range rules.Categories {
		var group []rules.Violation
		for _, v := range req.Violations {
			if v.Category == cat {
				group = append(group, v)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(cat.String()))
		for _, v := range group {
			fmt.Fprintf(&b, "  %s\n", v.String())
		}
	}
	return b.String()
}
