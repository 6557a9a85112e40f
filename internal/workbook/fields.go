package workbook

import "strings"

// Bin/group calculation classes carry no formula attribute and are exempt
// from comment rules entirely.
const (
	ClassCategoricalBin  = "categorical-bin"
	ClassQuantitativeBin = "quantitative-bin"
)

// Calculation is the validated view of one calculated field. The Name is the
// immutable internal identifier; Caption is the mutable display label.
type Calculation struct {
	Name     string
	Caption  string
	Formula  string
	Class    string
	Datatype string
	Role     string

	// RawFormula preserves entity encoding from the file; empty plus
	// HasRaw=false when the raw scan did not cover this column.
	RawFormula string
	HasRaw     bool
}

// DisplayName returns the caption when set, otherwise the internal name.
func (c *Calculation) DisplayName() string {
	if c.Caption != "" {
		return c.Caption
	}
	return c.Name
}

// HasFormula reports whether there is any formula text to validate.
func (c *Calculation) HasFormula() bool {
	return strings.TrimSpace(c.Formula) != ""
}

// IsBin reports whether this is a bin/group calculation.
func (c *Calculation) IsBin() bool {
	return c.Class == ClassCategoricalBin || c.Class == ClassQuantitativeBin
}

// CommentLine returns the first line of the formula when it is a // comment,
// or "" when the formula carries no leading comment.
func (c *Calculation) CommentLine() string {
	trimmed := strings.TrimSpace(c.Formula)
	if !strings.HasPrefix(trimmed, "//") {
		return ""
	}
	if i := strings.IndexAny(trimmed, "\r\n"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// CommentText returns the first comment line with the marker and surrounding
// whitespace stripped.
func (c *Calculation) CommentText() string {
	return strings.TrimSpace(strings.TrimPrefix(c.CommentLine(), "//"))
}

// Folder is the validated view of one grouping container.
type Folder struct {
	Name  string
	Role  string
	Items []string

	node *Node
}

// Calculations returns every column owning a calculation, in document order.
func (wb *Workbook) Calculations() []*Calculation {
	var out []*Calculation
	for _, col := range wb.Root.FindAll("column") {
		calc := col.Child("calculation")
		if calc == nil {
			continue
		}
		name := col.Attr("name")
		raw, hasRaw := wb.RawFormula(name)
		out = append(out, &Calculation{
			Name:       name,
			Caption:    col.Attr("caption"),
			Formula:    calc.Attr("formula"),
			Class:      calc.Attr("class"),
			Datatype:   col.Attr("datatype"),
			Role:       col.Attr("role"),
			RawFormula: raw,
			HasRaw:     hasRaw,
		})
	}
	return out
}

// FoldersCommon returns the <folders-common> aggregate node, or nil.
func (wb *Workbook) FoldersCommon() *Node {
	return wb.Root.Find("folders-common")
}

// Layout returns the <layout> node, or nil.
func (wb *Workbook) Layout() *Node {
	return wb.Root.Find("layout")
}

// AllFolderNodes returns every <folder> element anywhere in the document.
func (wb *Workbook) AllFolderNodes() []*Node {
	return wb.Root.FindAll("folder")
}

// Folders returns the folders inside <folders-common>, in document order.
// Folders outside the aggregate are a rule violation, not part of this view.
func (wb *Workbook) Folders() []*Folder {
	fc := wb.FoldersCommon()
	if fc == nil {
		return nil
	}
	var out []*Folder
	for _, n := range fc.Children {
		if n.Tag() != "folder" {
			continue
		}
		f := &Folder{
			Name: n.Attr("name"),
			Role: n.Attr("role"),
			node: n,
		}
		for _, item := range n.Children {
			if item.Tag() == "folder-item" {
				f.Items = append(f.Items, item.Attr("name"))
			}
		}
		out = append(out, f)
	}
	return out
}

// TrimBrackets strips one level of Tableau field-name brackets.
func TrimBrackets(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
}
