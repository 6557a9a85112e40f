package rules

import (
	"fmt"
	"regexp"

	"github.com/tabtidy/tabtidy/internal/workbook"
)

// DefaultMaxFolders bounds the folder count. Six broad purpose-oriented
// categories keep the data pane navigable.
const DefaultMaxFolders = 6

// xmlTarget is the violation target for document-level findings.
const xmlTarget = "XML"

// folderIconPattern accepts an emoji rune or an &#x...; entity at the start
// of a folder name. Decoded names carry the rune, raw names the entity.
var folderIconPattern = regexp.MustCompile(`^([\x{1F300}-\x{1F9FF}]|&#x[0-9A-Fa-f]+;)`)

// F1: every validated calculation belongs to exactly one folder.
type folderCoverage struct{}

func (folderCoverage) ID() string         { return "F1" }
func (folderCoverage) Category() Category { return CategoryFolder }

func (folderCoverage) Evaluate(wb *workbook.Workbook) []Violation {
	if wb.FoldersCommon() == nil {
		// Nothing to assign into; F2 reports the missing aggregate.
		return nil
	}
	assigned := make(map[string]int)
	for _, f := range wb.Folders() {
		for _, item := range f.Items {
			assigned[workbook.TrimBrackets(item)]++
		}
	}
	var out []Violation
	for _, c := range wb.Calculations() {
		if c.Name == "" {
			continue
		}
		switch n := assigned[workbook.TrimBrackets(c.Name)]; {
		case n == 0:
			out = append(out, Violation{
				Rule:     "F1",
				Category: CategoryFolder,
				Target:   c.DisplayName(),
				Message:  "not in any folder",
			})
		case n > 1:
			out = append(out, Violation{
				Rule:     "F1",
				Category: CategoryFolder,
				Target:   c.DisplayName(),
				Message:  fmt.Sprintf("assigned to %d folders, must be exactly one", n),
			})
		}
	}
	return out
}

// F2: the <folders-common> aggregate exists.
type folderAggregateExists struct{}

func (folderAggregateExists) ID() string         { return "F2" }
func (folderAggregateExists) Category() Category { return CategoryFolder }

func (folderAggregateExists) Evaluate(wb *workbook.Workbook) []Violation {
	if wb.FoldersCommon() == nil {
		return []Violation{{
			Rule:     "F2",
			Category: CategoryFolder,
			Target:   xmlTarget,
			Message:  "missing <folders-common> element",
		}}
	}
	return nil
}

// F3: <folders-common> sits before <layout> among its siblings. That is the
// single insertion point Tableau accepts without reshuffling the data pane.
type folderAggregatePlacement struct{}

func (folderAggregatePlacement) ID() string         { return "F3" }
func (folderAggregatePlacement) Category() Category { return CategoryFolder }

func (folderAggregatePlacement) Evaluate(wb *workbook.Workbook) []Violation {
	fc := wb.FoldersCommon()
	layout := wb.Layout()
	if fc == nil || layout == nil {
		return nil
	}
	parent := fc.Parent()
	if parent == nil || parent != layout.Parent() {
		return nil
	}
	if parent.ChildIndex(fc) > parent.ChildIndex(layout) {
		return []Violation{{
			Rule:     "F3",
			Category: CategoryFolder,
			Target:   xmlTarget,
			Message:  "<folders-common> must appear before <layout>",
		}}
	}
	return nil
}

// F4: no <folder> element outside <folders-common>.
type folderContainment struct{}

func (folderContainment) ID() string         { return "F4" }
func (folderContainment) Category() Category { return CategoryFolder }

func (folderContainment) Evaluate(wb *workbook.Workbook) []Violation {
	fc := wb.FoldersCommon()
	if fc == nil {
		return nil
	}
	outside := 0
	for _, n := range wb.AllFolderNodes() {
		if n.Parent() != fc {
			outside++
		}
	}
	if outside > 0 {
		return []Violation{{
			Rule:     "F4",
			Category: CategoryFolder,
			Target:   xmlTarget,
			Message:  fmt.Sprintf("%d <folder> elements outside <folders-common>", outside),
		}}
	}
	return nil
}

// F5: folders carry no role attribute.
type folderNoRole struct{}

func (folderNoRole) ID() string         { return "F5" }
func (folderNoRole) Category() Category { return CategoryFolder }

func (folderNoRole) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, f := range wb.Folders() {
		if f.Role != "" {
			target := f.Name
			if target == "" {
				target = "unnamed"
			}
			out = append(out, Violation{
				Rule:     "F5",
				Category: CategoryFolder,
				Target:   target,
				Message:  "has invalid role attribute",
			})
		}
	}
	return out
}

// F6: every folder item names a field that exists in the workbook.
type folderItemsExist struct{}

func (folderItemsExist) ID() string         { return "F6" }
func (folderItemsExist) Category() Category { return CategoryFolder }

func (folderItemsExist) Evaluate(wb *workbook.Workbook) []Violation {
	known := make(map[string]bool)
	for _, c := range wb.Calculations() {
		known[workbook.TrimBrackets(c.Name)] = true
	}
	var out []Violation
	for _, f := range wb.Folders() {
		for _, item := range f.Items {
			if !known[workbook.TrimBrackets(item)] {
				out = append(out, Violation{
					Rule:     "F6",
					Category: CategoryFolder,
					Target:   item,
					Message:  "not found in workbook",
				})
			}
		}
	}
	return out
}

// F7: <layout> opts into folder structure display.
type folderLayoutStructure struct{}

func (folderLayoutStructure) ID() string         { return "F7" }
func (folderLayoutStructure) Category() Category { return CategoryFolder }

func (folderLayoutStructure) Evaluate(wb *workbook.Workbook) []Violation {
	layout := wb.Layout()
	if layout == nil {
		return nil
	}
	if layout.Attr("show-structure") != "true" {
		return []Violation{{
			Rule:     "F7",
			Category: CategoryFolder,
			Target:   xmlTarget,
			Message:  "<layout> missing show-structure='true'",
		}}
	}
	return nil
}

// F8: folder names contain no unescaped ampersand in the raw attribute text.
// &amp; is the only accepted rendering of & in a folder name.
type folderNameEscaping struct{}

func (folderNameEscaping) ID() string         { return "F8" }
func (folderNameEscaping) Category() Category { return CategoryEncoding }

func (folderNameEscaping) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, raw := range wb.RawFolderNames() {
		if HasUnescapedAmpersand(raw) {
			out = append(out, Violation{
				Rule:     "F8",
				Category: CategoryEncoding,
				Target:   raw,
				Message:  "has unescaped &",
			})
		}
	}
	return out
}

// F9: folder count stays within the configured maximum.
type folderMax struct {
	Max int
}

func (folderMax) ID() string         { return "F9" }
func (folderMax) Category() Category { return CategoryFolder }

func (r folderMax) Evaluate(wb *workbook.Workbook) []Violation {
	if wb.FoldersCommon() == nil {
		return nil
	}
	if n := len(wb.Folders()); n > r.Max {
		return []Violation{{
			Rule:     "F9",
			Category: CategoryFolder,
			Target:   xmlTarget,
			Message:  fmt.Sprintf("too many folders (%d) - maximum is %d", n, r.Max),
		}}
	}
	return nil
}

// F10: folder names start with an emoji or entity icon prefix.
type folderIconPrefix struct{}

func (folderIconPrefix) ID() string         { return "F10" }
func (folderIconPrefix) Category() Category { return CategoryFolder }

func (folderIconPrefix) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	for _, f := range wb.Folders() {
		if !folderIconPattern.MatchString(f.Name) {
			out = append(out, Violation{
				Rule:     "F10",
				Category: CategoryFolder,
				Target:   f.Name,
				Message:  "missing emoji prefix (use &#x1F4CA; format)",
			})
		}
	}
	return out
}

// F11: no duplicate folder names, no icon reused across folders.
type folderNoDuplicates struct{}

func (folderNoDuplicates) ID() string         { return "F11" }
func (folderNoDuplicates) Category() Category { return CategoryFolder }

func (folderNoDuplicates) Evaluate(wb *workbook.Workbook) []Violation {
	var out []Violation
	seenNames := make(map[string]bool)
	seenIcons := make(map[string]bool)
	for _, f := range wb.Folders() {
		if seenNames[f.Name] {
			out = append(out, Violation{
				Rule:     "F11",
				Category: CategoryFolder,
				Target:   f.Name,
				Message:  "duplicate folder name",
			})
		}
		seenNames[f.Name] = true

		icon := folderIconPattern.FindString(f.Name)
		if icon == "" {
			continue
		}
		if seenIcons[icon] {
			out = append(out, Violation{
				Rule:     "F11",
				Category: CategoryFolder,
				Target:   icon,
				Message:  "duplicate emoji used in multiple folders",
			})
		}
		seenIcons[icon] = true
	}
	return out
}
