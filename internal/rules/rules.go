// Package rules defines the cleanup rule set and its registry.
//
// Each rule is a pure function from a workbook to zero or more violations.
// Rules never mutate the document and never consult another rule's outcome,
// so they can be registered, removed, and reordered independently. A rule's
// category is declared at registration time via the Category method, never
// inferred from its identifier.
package rules

import (
	"fmt"

	"github.com/tabtidy/tabtidy/internal/workbook"
)

// Category tags a rule and its violations with the error family they belong
// to. Structural is fatal; everything else is recoverable and handed to the
// corrective step.
type Category int

const (
	CategoryStructural Category = iota
	CategoryCaption
	CategoryComment
	CategoryFolder
	CategoryEncoding
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryStructural,
	CategoryCaption,
	CategoryComment,
	CategoryFolder,
	CategoryEncoding,
}

func (c Category) String() string {
	switch c {
	case CategoryStructural:
		return "structural"
	case CategoryCaption:
		return "caption"
	case CategoryComment:
		return "comment"
	case CategoryFolder:
		return "folder"
	case CategoryEncoding:
		return "encoding"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Violation is one rule's finding against one entity or the document as a
// whole. Violations are produced fresh on every validation pass.
type Violation struct {
	Rule     string
	Category Category
	Target   string
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("[ERROR] %s: %q - %s", v.Rule, v.Target, v.Message)
}

// Rule is the shared contract every check implements.
type Rule interface {
	// ID is the rule's stable identifier (e.g. "C1", "M3", "F9").
	ID() string

	// Category is the error family this rule reports under.
	Category() Category

	// Evaluate inspects the workbook and returns zero or more violations.
	// It must not mutate the workbook.
	Evaluate(wb *workbook.Workbook) []Violation
}

// Registry holds an ordered collection of rules. Evaluation order follows
// registration order, which keeps reports byte-for-byte reproducible.
type Registry struct {
	rules []Rule
	seen  map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

// Register appends a rule. Duplicate IDs are rejected so identifiers stay
// addressable across categories.
func (r *Registry) Register(rule Rule) error {
	if r.seen[rule.ID()] {
		return fmt.Errorf("duplicate rule ID %q", rule.ID())
	}
	r.seen[rule.ID()] = true
	r.rules = append(r.rules, rule)
	return nil
}

// MustRegister is Register for the fixed default set, where a duplicate is a
// programming error.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// DefaultRegistry returns the full standard cleanup rule set.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, rule := range []Rule{
		captionTitleCase{},
		captionNoUnderscore{},
		captionNoPrefix{},
		captionAcronyms{},
		captionNoDoubleParens{},
		commentPresent{},
		commentMarker{},
		commentQuality{},
		commentEncodedNewline{},
		commentEscapedAmpersand{},
		folderCoverage{},
		folderAggregateExists{},
		folderAggregatePlacement{},
		folderContainment{},
		folderNoRole{},
		folderItemsExist{},
		folderLayoutStructure{},
		folderNameEscaping{},
		folderMax{Max: DefaultMaxFolders},
		folderIconPrefix{},
		folderNoDuplicates{},
	} {
		reg.MustRegister(rule)
	}
	return reg
}
