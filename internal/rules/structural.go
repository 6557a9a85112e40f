package rules

// StructuralRuleID identifies the fatal parse check. It is not part of the
// registry: when the document cannot be parsed there is no tree for the
// other rules to walk, so the validator emits this single violation and
// evaluates nothing else.
const StructuralRuleID = "X1"

// StructuralViolation wraps a parse failure as the one fatal finding of a
// validation pass.
func StructuralViolation(err error) Violation {
	return Violation{
		Rule:     StructuralRuleID,
		Category: CategoryStructural,
		Target:   xmlTarget,
		Message:  "parse error: " + err.Error(),
	}
}
