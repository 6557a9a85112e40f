package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tabtidy/tabtidy/internal/workbook"
)

// MinCommentLength is the minimum purpose-comment length, in characters
// after the // marker.
const MinCommentLength = 15

// lazyCommentPatterns match generic comments that restate mechanics instead
// of explaining purpose.
var lazyCommentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^//\s*(calculated\s+field|calculation|formula|field)\s*$`),
	regexp.MustCompile(`(?i)^//\s*(returns?\s+\d|case\s+statement|date\s+calculation|sum\s+of|if\s+statement)`),
	regexp.MustCompile(`(?i)^//\s*\w{1,6}\s*$`),
	regexp.MustCompile(`(?i)^//\s*(this|the|a|an)\s+(field|calc|calculation|formula|value)\s*`),
	regexp.MustCompile(`(?i)^//\s*(boolean|string|number|integer|float|date)\s*(field|value|calc)?\s*$`),
}

// commented filters the calculations that comment rules apply to. Bin/group
// calculations and columns without formula text are exempt entirely, not
// merely passing.
func commented(wb *workbook.Workbook) []*workbook.Calculation {
	var out []*workbook.Calculation
	for _, c := range wb.Calculations() {
		if c.IsBin() || !c.HasFormula() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// M1: every formula begins with a purpose comment.
type commentPresent struct{}

func (commentPresent) ID() string         { return "M1" }
func (commentPresent) Category() Category { return CategoryComment }

func (commentPresent) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range commented(wb) {
		if !strings.HasPrefix(strings.TrimSpace(c.Formula), "//") {
			out = append(out, Violation{
				Rule:     "M1",
				Category: CategoryComment,
				Target:   c.DisplayName(),
				Message:  "missing comment",
			})
		}
	}
	return out
}

// M2: the comment marker is the two-character // sequence. A lone slash or a
// block-style marker fails M1 first, so this rule only examines formulas
// that already carry a comment line.
type commentMarker struct{}

func (commentMarker) ID() string         { return "M2" }
func (commentMarker) Category() Category { return CategoryComment }

func (commentMarker) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range commented(wb) {
		line := c.CommentLine()
		if line == "" {
			// Missing or mismarked comments are M1's finding.
			continue
		}
		if !strings.HasPrefix(line, "//") {
			out = append(out, Violation{
				Rule:     "M2",
				Category: CategoryComment,
				Target:   c.DisplayName(),
				Message:  `comment must start with "//"`,
			})
		}
	}
	return out
}

// M3: the comment explains purpose. Short comments, comments matching the
// lazy-phrase blacklist, and comments that merely restate the caption all
// fail.
type commentQuality struct{}

func (commentQuality) ID() string         { return "M3" }
func (commentQuality) Category() Category { return CategoryComment }

func (commentQuality) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range commented(wb) {
		line := c.CommentLine()
		if line == "" {
			// No comment at all is M1's finding.
			continue
		}
		text := c.CommentText()

		if len(text) < MinCommentLength {
			out = append(out, Violation{
				Rule:     "M3",
				Category: CategoryComment,
				Target:   c.DisplayName(),
				Message:  fmt.Sprintf("comment too short (%d chars, need %d+)", len(text), MinCommentLength),
			})
			continue
		}

		lazy := false
		for _, p := range lazyCommentPatterns {
			if p.MatchString(line) {
				preview := text
				if len(preview) > 30 {
					preview = preview[:30]
				}
				out = append(out, Violation{
					Rule:     "M3",
					Category: CategoryComment,
					Target:   c.DisplayName(),
					Message:  fmt.Sprintf("lazy/generic comment - explain PURPOSE, not just %q", preview),
				})
				lazy = true
				break
			}
		}
		if lazy || c.Caption == "" {
			continue
		}

		if normalizeLabel(c.Caption) == strings.ToLower(text) {
			out = append(out, Violation{
				Rule:     "M3",
				Category: CategoryComment,
				Target:   c.DisplayName(),
				Message:  "comment just restates caption - explain PURPOSE instead",
			})
		}
	}
	return out
}

func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.TrimSpace(s)
}

// M4: line breaks in raw formula text use the encoded &#13;&#10; sequence.
type commentEncodedNewline struct{}

func (commentEncodedNewline) ID() string         { return "M4" }
func (commentEncodedNewline) Category() Category { return CategoryEncoding }

func (commentEncodedNewline) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range commented(wb) {
		if c.HasRaw && HasLiteralNewline(c.RawFormula) {
			out = append(out, Violation{
				Rule:     "M4",
				Category: CategoryEncoding,
				Target:   c.DisplayName(),
				Message:  fmt.Sprintf("newline not XML-encoded (use %s)", EncodedNewline),
			})
		}
	}
	return out
}

// M5: no raw ampersand in formula text.
type commentEscapedAmpersand struct{}

func (commentEscapedAmpersand) ID() string         { return "M5" }
func (commentEscapedAmpersand) Category() Category { return CategoryEncoding }

func (commentEscapedAmpersand) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range commented(wb) {
		if c.HasRaw && HasUnescapedAmpersand(c.RawFormula) {
			out = append(out, Violation{
				Rule:     "M5",
				Category: CategoryEncoding,
				Target:   c.DisplayName(),
				Message:  "unescaped & in formula/comment",
			})
		}
	}
	return out
}
