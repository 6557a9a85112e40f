package validate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tabtidy/tabtidy/internal/rules"
	"github.com/tabtidy/tabtidy/internal/workbook"
)

const dirtyWB = `<workbook><datasource>
	<column caption='profit_ratio' datatype='real' name='[Calc_1]' role='measure'>
		<calculation class='tableau' formula='SUM([Profit])/SUM([Sales])' />
	</column>
</datasource></workbook>`

const cleanWB = `<workbook><datasource>
	<column caption='Profit Ratio' datatype='real' name='[Calc_1]' role='measure'>
		<calculation class='tableau' formula='// Margin share for the pricing review&#13;&#10;SUM([Profit])/SUM([Sales])' />
	</column>
	<folders-common>
		<folder name='&#x1F4CA; Metrics'>
			<folder-item name='[Calc_1]' type='field' />
		</folder>
	</folders-common>
	<layout dim-ordering='alphabetic' show-structure='true' />
</datasource></workbook>`

func parseWB(t *testing.T, xml string) *workbook.Workbook {
	t.Helper()
	wb, err := workbook.Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return wb
}

func TestValidateCleanWorkbook(t *testing.T) {
	report := New(nil).Validate(parseWB(t, cleanWB))
	if !report.Clean() {
		t.Errorf("expected clean report, got %d violations: %v", report.Total, report.Lines())
	}
}

func TestValidateDirtyWorkbook(t *testing.T) {
	report := New(nil).Validate(parseWB(t, dirtyWB))

	// Underscore caption, missing comment, missing folder aggregate.
	wantRules := []string{"C2", "M1", "F2"}
	if report.Total != len(wantRules) {
		t.Fatalf("expected %d violations, got %d: %v", len(wantRules), report.Total, report.Lines())
	}
	for i, v := range report.Violations {
		if v.Rule != wantRules[i] {
			t.Errorf("violation %d: expected %s, got %s", i, wantRules[i], v.Rule)
		}
	}

	if report.Counts[rules.CategoryCaption] != 1 ||
		report.Counts[rules.CategoryComment] != 1 ||
		report.Counts[rules.CategoryFolder] != 1 {
		t.Errorf("unexpected category counts: %v", report.Counts)
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	v := New(nil)
	first := v.Validate(parseWB(t, dirtyWB))
	for i := 0; i < 5; i++ {
		again := v.Validate(parseWB(t, dirtyWB))
		if !reflect.DeepEqual(first.Lines(), again.Lines()) {
			t.Fatalf("run %d produced different output:\n%v\nvs\n%v", i, first.Lines(), again.Lines())
		}
	}
}

func TestValidateFileFatalOnUnparseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.twb")
	if err := os.WriteFile(path, []byte("<workbook><open></workbook>"), 0644); err != nil {
		t.Fatal(err)
	}

	report := New(nil).ValidateFile(path)
	if !report.Fatal {
		t.Fatal("expected fatal report")
	}
	if report.Total != 1 {
		t.Fatalf("fatal report must carry exactly one violation, got %d", report.Total)
	}
	v := report.Violations[0]
	if v.Rule != rules.StructuralRuleID || v.Category != rules.CategoryStructural {
		t.Errorf("unexpected structural violation: %+v", v)
	}
}

func TestValidateFileMissing(t *testing.T) {
	report := New(nil).ValidateFile(filepath.Join(t.TempDir(), "absent.twb"))
	if !report.Fatal || report.Total != 1 {
		t.Errorf("expected single fatal violation for missing file, got %+v", report)
	}
}

func TestByCategoryPreservesOrder(t *testing.T) {
	report := New(nil).Validate(parseWB(t, dirtyWB))
	groups := report.ByCategory()
	if len(groups[rules.CategoryCaption]) != 1 {
		t.Errorf("caption group: %v", groups[rules.CategoryCaption])
	}
	if len(groups[rules.CategoryStructural]) != 0 {
		t.Errorf("unexpected structural findings: %v", groups[rules.CategoryStructural])
	}
}
