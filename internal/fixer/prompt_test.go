package fixer

import (
	"strings"
	"testing"

	"github.com/tabtidy/tabtidy/internal/converge"
	"github.com/tabtidy/tabtidy/internal/rules"
)

func TestBudgetExhausted(t *testing.T) {
	tests := []struct {
		transcript []string
		want       bool
	}{
		{[]string{"fixed 3 captions", "all done"}, false},
		{[]string{"working...", "Turn limit reached, stopping"}, true},
		{[]string{"BUDGET EXHAUSTED"}, true},
		{[]string{"output limit reached mid-edit"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		if got := BudgetExhausted(tt.transcript); got != tt.want {
			t.Errorf("BudgetExhausted(%v) = %v, want %v", tt.transcript, got, tt.want)
		}
	}
}

func TestBuildPromptGroupsByCategory(t *testing.T) {
	req := &converge.FixRequest{
		WorkingCopy:  "/tmp/wb_cleaned.twb",
		Pass:         2,
		Instructions: "Cleanup pass 2 of 10.\n",
		Violations: []rules.Violation{
			{Rule: "F2", Category: rules.CategoryFolder, Target: "XML", Message: "missing <folders-common> element"},
			{Rule: "C2", Category: rules.CategoryCaption, Target: "profit_ratio", Message: "contains underscore"},
			{Rule: "M1", Category: rules.CategoryComment, Target: "Sales Rank", Message: "missing comment"},
		},
	}

	prompt := BuildPrompt(req)

	if !strings.HasPrefix(prompt, "Cleanup pass 2 of 10.") {
		t.Error("instructions must lead the prompt")
	}
	if !strings.Contains(prompt, "/tmp/wb_cleaned.twb") {
		t.Error("prompt missing the working copy path")
	}
	if !strings.Contains(prompt, "Violations to fix (3):") {
		t.Error("prompt missing the violation count")
	}

	// Categories appear in reporting order regardless of list order.
	caption := strings.Index(prompt, "CAPTION:")
	comment := strings.Index(prompt, "COMMENT:")
	folder := strings.Index(prompt, "FOLDER:")
	if caption < 0 || comment < 0 || folder < 0 {
		t.Fatalf("missing category headers in:\n%s", prompt)
	}
	if !(caption < comment && comment < folder) {
		t.Errorf("category order wrong: caption=%d comment=%d folder=%d", caption, comment, folder)
	}
	if !strings.Contains(prompt, `[ERROR] C2: "profit_ratio" - contains underscore`) {
		t.Error("violation line not rendered verbatim")
	}
}

func TestBuildPromptCleanPass(t *testing.T) {
	req := &converge.FixRequest{
		WorkingCopy:  "/tmp/wb_cleaned.twb",
		Pass:         1,
		Instructions: "Cleanup pass 1 of 10.\n",
	}
	prompt := BuildPrompt(req)
	if !strings.Contains(prompt, "no violations this pass") {
		t.Errorf("clean pass prompt missing note:\n%s", prompt)
	}
	if strings.Contains(prompt, "Violations to fix") {
		t.Error("clean pass prompt should not list violations")
	}
}
