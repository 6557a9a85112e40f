// Package validate walks a workbook with the registered rule set and
// collects violations into a flat, stably-ordered report.
//
// Validation is side-effect free and deterministic: for a fixed document and
// rule set the report is byte-for-byte reproducible. Rules run in
// registration order; within a rule, findings follow document order.
package validate

import (
	"github.com/tabtidy/tabtidy/internal/rules"
	"github.com/tabtidy/tabtidy/internal/workbook"
)

// Report is the outcome of one validation pass.
type Report struct {
	Violations []rules.Violation
	Counts     map[rules.Category]int
	Total      int

	// Fatal is set when the document was unparseable. The report then
	// contains exactly one structural violation and no rule was evaluated.
	Fatal bool
}

// Validator applies a rule registry to workbooks.
type Validator struct {
	registry *rules.Registry
}

// New returns a validator over the given registry. A nil registry gets the
// default rule set.
func New(registry *rules.Registry) *Validator {
	if registry == nil {
		registry = rules.DefaultRegistry()
	}
	return &Validator{registry: registry}
}

// Validate applies every registered rule to the workbook.
func (v *Validator) Validate(wb *workbook.Workbook) *Report {
	r := newReport()
	for _, rule := range v.registry.Rules() {
		for _, violation := range rule.Evaluate(wb) {
			r.add(violation)
		}
	}
	return r
}

// ValidateFile loads and validates the workbook at path. An unparseable
// document short-circuits into a fatal structural report.
func (v *Validator) ValidateFile(path string) *Report {
	wb, err := workbook.Load(path)
	if err != nil {
		r := newReport()
		r.Fatal = true
		r.add(rules.StructuralViolation(err))
		return r
	}
	return v.Validate(wb)
}

func newReport() *Report {
	return &Report{Counts: make(map[rules.Category]int)}
}

func (r *Report) add(v rules.Violation) {
	r.Violations = append(r.Violations, v)
	r.Counts[v.Category]++
	r.Total++
}

// Clean reports whether the pass found nothing.
func (r *Report) Clean() bool {
	return r.Total == 0
}

// Lines renders one line per violation, severity tag and rule identifier
// first. This is the CLI surface and the text handed to the corrective step.
func (r *Report) Lines() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.String())
	}
	return out
}

// ByCategory groups violations preserving report order within each group.
func (r *Report) ByCategory() map[rules.Category][]rules.Violation {
	out := make(map[rules.Category][]rules.Violation)
	for _, v := range r.Violations {
		out[v.Category] = append(out[v.Category], v)
	}
	return out
}
