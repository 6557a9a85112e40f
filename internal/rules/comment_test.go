package rules

import (
	"strings"
	"testing"
)

func formulaXML(formula string) string {
	return `<workbook><datasource>
		<column caption='Profit Ratio' datatype='real' name='[Calc_1]' role='measure'>
			<calculation class='tableau' formula='` + formula + `' />
		</column>
	</datasource></workbook>`
}

func TestCommentPresent(t *testing.T) {
	tests := []struct {
		formula string
		flagged bool
	}{
		{"// Share of sales retained as profit&#10;SUM([Profit])/SUM([Sales])", false},
		{"SUM([Profit])/SUM([Sales])", true},
		{"  // leading whitespace tolerated&#10;1", false},
	}
	for _, tt := range tests {
		vs := evaluate(t, "M1", parseWB(t, formulaXML(tt.formula)))
		if got := len(vs) > 0; got != tt.flagged {
			t.Errorf("M1 on %q: flagged=%v, want %v", tt.formula, got, tt.flagged)
		}
	}
}

func TestCommentMarkerSubsumedByMissingComment(t *testing.T) {
	// A lone-slash marker is M1's finding alone: one violation per
	// calculation, never an M1+M2 double count.
	wb := parseWB(t, formulaXML("/ single slash comment&#10;1"))
	if vs := evaluate(t, "M1", wb); len(vs) != 1 {
		t.Errorf("M1: expected 1 violation, got %d", len(vs))
	}
	if vs := evaluate(t, "M2", wb); len(vs) != 0 {
		t.Errorf("M2 double-counted the mismarked comment: %v", vs)
	}
	if vs := evaluate(t, "M2", parseWB(t, formulaXML("// proper marker here for sure&#10;1"))); len(vs) != 0 {
		t.Errorf("proper marker flagged: %v", vs)
	}
}

func TestCommentQualityTooShort(t *testing.T) {
	vs := evaluate(t, "M3", parseWB(t, formulaXML("// short&#10;1")))
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	if !strings.Contains(vs[0].Message, "too short") {
		t.Errorf("unexpected message: %s", vs[0].Message)
	}
}

func TestCommentQualityLazyPhrases(t *testing.T) {
	lazy := []string{
		"// calculated field",
		"// this field computes the thing",
		"// sum of profit over sales ratio",
		"// date calculation for fiscal year",
	}
	for _, line := range lazy {
		vs := evaluate(t, "M3", parseWB(t, formulaXML(line+"&#10;1")))
		if len(vs) != 1 {
			t.Errorf("M3 on %q: expected 1 violation, got %d", line, len(vs))
			continue
		}
		if !strings.Contains(vs[0].Message, "PURPOSE") {
			t.Errorf("unexpected message: %s", vs[0].Message)
		}
	}
}

func TestCommentQualityRestatesCaption(t *testing.T) {
	xml := `<workbook><datasource>
		<column caption='Quarterly Profit Margin' datatype='real' name='[Calc_1]' role='measure'>
			<calculation class='tableau' formula='// Quarterly Profit Margin&#10;1' />
		</column>
	</datasource></workbook>`
	vs := evaluate(t, "M3", parseWB(t, xml))
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	if !strings.Contains(vs[0].Message, "restates caption") {
		t.Errorf("unexpected message: %s", vs[0].Message)
	}
}

func TestCommentQualityAcceptsPurposeComment(t *testing.T) {
	vs := evaluate(t, "M3", parseWB(t, formulaXML("// Tracks margin erosion for the quarterly pricing review&#10;1")))
	if len(vs) != 0 {
		t.Errorf("purpose comment flagged: %v", vs)
	}
}

func TestCommentRulesExemptBinsAndFormulaless(t *testing.T) {
	xml := `<workbook><datasource>
		<column caption='Sales Bin' datatype='integer' name='[Calc_1]' role='dimension'>
			<calculation class='quantitative-bin' formula='' />
		</column>
		<column caption='Group Field' datatype='string' name='[Calc_2]' role='dimension'>
			<calculation class='categorical-bin' formula='1' />
		</column>
		<column caption='No Formula' datatype='string' name='[Calc_3]' role='dimension'>
			<calculation class='tableau' formula='   ' />
		</column>
	</datasource></workbook>`
	wb := parseWB(t, xml)
	for _, id := range []string{"M1", "M2", "M3", "M4", "M5"} {
		if vs := evaluate(t, id, wb); len(vs) != 0 {
			t.Errorf("%s flagged an exempt calculation: %v", id, vs)
		}
	}
}

func TestEncodedNewlineRule(t *testing.T) {
	// The raw scan preserves entity text, so a formula written with the
	// encoded sequence passes and one with a literal break fails.
	good := formulaXML("// Margin share for the pricing review&#13;&#10;SUM([Profit])/SUM([Sales])")
	if vs := evaluate(t, "M4", parseWB(t, good)); len(vs) != 0 {
		t.Errorf("encoded newline flagged: %v", vs)
	}

	bad := `<workbook><datasource>
		<column caption='Profit Ratio' datatype='real' name='[Calc_1]' role='measure'>
			<calculation class='tableau' formula='// Margin share for the pricing review
SUM([Profit])' />
		</column>
	</datasource></workbook>`
	vs := evaluate(t, "M4", parseWB(t, bad))
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	if !strings.Contains(vs[0].Message, EncodedNewline) {
		t.Errorf("unexpected message: %s", vs[0].Message)
	}
}

func TestEscapedAmpersandRule(t *testing.T) {
	good := formulaXML("// Profit &amp; loss split for finance&#10;1")
	if vs := evaluate(t, "M5", parseWB(t, good)); len(vs) != 0 {
		t.Errorf("escaped ampersand flagged: %v", vs)
	}
}
