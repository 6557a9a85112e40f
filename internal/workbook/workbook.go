// Package workbook loads Tableau workbook (.twb) documents into an addressable
// tree and derives the validated views (calculations, folders) over it.
//
// The XML decoder resolves character entities in attribute values, which is
// what most rules want. Encoding rules need the text exactly as written, so
// Load also runs a raw scan over the file bytes that records formula and
// folder-name attributes with entities preserved. Workbooks are re-parsed
// from the working copy on every pass and never shared across runs.
package workbook

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ParseError reports an unparseable document. It is the only failure the
// loader produces for well-formed-ness problems; the validator turns it into
// a single fatal structural violation.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Msg)
}

// Workbook is one parsed document plus the raw attribute text captured
// before entity resolution.
type Workbook struct {
	Root *Node

	rawFormulas    map[string]string
	rawFolderNames []string
}

var (
	// Raw scans mirror the decoded tree: the regexes tolerate either quote
	// style and capture attribute text with entities unresolved.
	rawFormulaSingle = regexp.MustCompile(`(?s)<column[^>]*name='([^']+)'[^>]*>.*?<calculation[^>]*formula='([^']*)'`)
	rawFormulaDouble = regexp.MustCompile(`(?s)<column[^>]*name="([^"]+)"[^>]*>.*?<calculation[^>]*formula="([^"]*)"`)
	rawFolderSingle  = regexp.MustCompile(`<folder[^>]*name='([^']*)'`)
	rawFolderDouble  = regexp.MustCompile(`<folder[^>]*name="([^"]*)"`)
)

// Load reads and parses a workbook file. Invalid UTF-8 bytes are replaced
// rather than rejected, matching how corrupted exports are handled upstream.
func Load(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	wb, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return wb, nil
}

// Parse parses workbook bytes. The returned Workbook owns its tree.
func Parse(data []byte) (*Workbook, error) {
	content := strings.ToValidUTF8(string(data), "�")

	var root Node
	if err := xml.Unmarshal([]byte(content), &root); err != nil {
		pe := &ParseError{Msg: err.Error()}
		if syn, ok := err.(*xml.SyntaxError); ok {
			pe.Line = syn.Line
			pe.Msg = syn.Msg
		}
		return nil, pe
	}
	linkParents(&root)

	wb := &Workbook{
		Root:        &root,
		rawFormulas: make(map[string]string),
	}
	wb.scanRaw(content)
	return wb, nil
}

// scanRaw captures entity-preserving attribute text the decoder cannot give us.
func (wb *Workbook) scanRaw(content string) {
	for _, m := range rawFormulaSingle.FindAllStringSubmatch(content, -1) {
		wb.rawFormulas[m[1]] = m[2]
	}
	for _, m := range rawFormulaDouble.FindAllStringSubmatch(content, -1) {
		wb.rawFormulas[m[1]] = m[2]
	}
	for _, m := range rawFolderSingle.FindAllStringSubmatch(content, -1) {
		wb.rawFolderNames = append(wb.rawFolderNames, m[1])
	}
	for _, m := range rawFolderDouble.FindAllStringSubmatch(content, -1) {
		wb.rawFolderNames = append(wb.rawFolderNames, m[1])
	}
}

// RawFormula returns the formula attribute for the named column exactly as
// written in the file, with entities unresolved. ok is false when the raw
// scan did not see the column (for example when it was built in memory).
func (wb *Workbook) RawFormula(columnName string) (string, bool) {
	raw, ok := wb.rawFormulas[columnName]
	return raw, ok
}

// RawFolderNames returns folder name attributes as written in the file.
func (wb *Workbook) RawFolderNames() []string {
	return wb.rawFolderNames
}
