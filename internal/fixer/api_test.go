package fixer

import (
	"os"
	"testing"
)

func TestGetModel(t *testing.T) {
	if got := GetModel("configured-model"); got != "configured-model" {
		t.Errorf("explicit model ignored: %s", got)
	}

	t.Setenv(modelEnvVar, "env-model")
	if got := GetModel(""); got != "env-model" {
		t.Errorf("env override ignored: %s", got)
	}

	os.Unsetenv(modelEnvVar)
	if got := GetModel(""); got != DefaultModel {
		t.Errorf("default model = %s, want %s", got, DefaultModel)
	}
}

func TestExtractFenced(t *testing.T) {
	text := "Here is the corrected file.\n<corrected-workbook>\n<workbook />\n</corrected-workbook>\nDone."
	doc, ok := extractFenced(text)
	if !ok {
		t.Fatal("fenced document not found")
	}
	if doc != "<workbook />" {
		t.Errorf("extracted = %q", doc)
	}

	if _, ok := extractFenced("no fences here"); ok {
		t.Error("found a document where none exists")
	}
	if _, ok := extractFenced("<corrected-workbook>truncated reply"); ok {
		t.Error("unterminated fence accepted")
	}
}

func TestNewAPIFixerRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAPIFixer(APIConfig{}); err == nil {
		t.Error("expected error without an API key")
	}

	f, err := NewAPIFixer(APIConfig{APIKey: "test-key", Model: "m"})
	if err != nil {
		t.Fatalf("NewAPIFixer failed: %v", err)
	}
	if f.model != "m" || f.maxTokens != 64000 {
		t.Errorf("unexpected defaults: %+v", f)
	}
}
