package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tabtidy/tabtidy/internal/workbook"
)

// Acronyms is the allow-list of tokens that must stay uppercase verbatim,
// even under title-case transformation.
var Acronyms = []string{
	"ID", "YTD", "MTD", "QTD", "KPI", "ROI", "YOY", "MOM", "WOW",
	"LOD", "RLS", "API", "URL", "SQL", "AVG", "SUM", "MIN", "MAX",
}

var acronymSet = func() map[string]bool {
	m := make(map[string]bool, len(Acronyms))
	for _, a := range Acronyms {
		m[a] = true
	}
	return m
}()

var acronymPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(Acronyms))
	for _, a := range Acronyms {
		m[a] = regexp.MustCompile(`(?i)\b` + a + `\b`)
	}
	return m
}()

// TitleCase converts a label to space-delimited title case, preserving the
// acronym allow-list verbatim.
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	out := make([]string, 0, len(words))
	for _, w := range words {
		upper := strings.ToUpper(w)
		if acronymSet[upper] {
			out = append(out, upper)
			continue
		}
		out = append(out, capitalize(w))
	}
	return strings.Join(out, " ")
}

func capitalize(w string) string {
	r := []rune(strings.ToLower(w))
	if len(r) == 0 {
		return ""
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// C1: captions are space-delimited title case. Flags delimiter and spacing
// deviations; pure casing of acronym tokens is C4's job.
type captionTitleCase struct{}

func (captionTitleCase) ID() string         { return "C1" }
func (captionTitleCase) Category() Category { return CategoryCaption }

func (captionTitleCase) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range wb.Calculations() {
		if c.Caption == "" {
			continue
		}
		expected := TitleCase(c.Caption)
		if c.Caption == expected || strings.EqualFold(c.Caption, expected) {
			continue
		}
		if strings.EqualFold(stripSpaces(c.Caption), stripSpaces(expected)) {
			out = append(out, Violation{
				Rule:     "C1",
				Category: CategoryCaption,
				Target:   c.DisplayName(),
				Message:  fmt.Sprintf("should be %q", expected),
			})
		}
	}
	return out
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// C2: no underscores in captions.
type captionNoUnderscore struct{}

func (captionNoUnderscore) ID() string         { return "C2" }
func (captionNoUnderscore) Category() Category { return CategoryCaption }

func (captionNoUnderscore) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range wb.Calculations() {
		if strings.Contains(c.Caption, "_") {
			out = append(out, Violation{
				Rule:     "C2",
				Category: CategoryCaption,
				Target:   c.DisplayName(),
				Message:  "contains underscore",
			})
		}
	}
	return out
}

// C3: no deprecated c_ prefix.
type captionNoPrefix struct{}

func (captionNoPrefix) ID() string         { return "C3" }
func (captionNoPrefix) Category() Category { return CategoryCaption }

func (captionNoPrefix) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range wb.Calculations() {
		if c.Caption != "" && strings.HasPrefix(strings.ToLower(c.Caption), "c_") {
			out = append(out, Violation{
				Rule:     "C3",
				Category: CategoryCaption,
				Target:   c.DisplayName(),
				Message:  "has deprecated c_ prefix",
			})
		}
	}
	return out
}

// C4: allow-listed acronyms stay uppercase wherever they appear as words.
type captionAcronyms struct{}

func (captionAcronyms) ID() string         { return "C4" }
func (captionAcronyms) Category() Category { return CategoryCaption }

func (captionAcronyms) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range wb.Calculations() {
		if c.Caption == "" {
			continue
		}
		for _, a := range Acronyms {
			match := acronymPatterns[a].FindString(c.Caption)
			if match != "" && match != a {
				out = append(out, Violation{
					Rule:     "C4",
					Category: CategoryCaption,
					Target:   c.DisplayName(),
					Message:  fmt.Sprintf("%q should be %q", match, a),
				})
			}
		}
	}
	return out
}

var doubleParens = regexp.MustCompile(`\)\s*\(`)

// C5: no back-to-back parenthesis groups.
type captionNoDoubleParens struct{}

func (captionNoDoubleParens) ID() string         { return "C5" }
func (captionNoDoubleParens) Category() Category { return CategoryCaption }

func (captionNoDoubleParens) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, c := range wb.Calculations() {
		if doubleParens.MatchString(c.Caption) {
			out = append(out, Violation{
				Rule:     "C5",
				Category: CategoryCaption,
				Target:   c.DisplayName(),
				Message:  `has double parentheses "()()"`,
			})
		}
	}
	return out
}
