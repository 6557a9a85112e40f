package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func makeTwbx(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbook.twbx")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractLocatesWorkbook(t *testing.T) {
	twbx := makeTwbx(t, map[string]string{
		"Sales.twb":           "<workbook />",
		"Data/extract.hyper":  "binary",
		"Image/thumbnail.png": "png",
	})

	dest := filepath.Join(t.TempDir(), "out")
	result, err := Extract(twbx, dest)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Files != 3 {
		t.Errorf("files = %d, want 3", result.Files)
	}
	if filepath.Base(result.Workbook) != "Sales.twb" {
		t.Errorf("workbook = %s", result.Workbook)
	}
	data, err := os.ReadFile(result.Workbook)
	if err != nil || string(data) != "<workbook />" {
		t.Errorf("workbook content = %q, %v", data, err)
	}
}

func TestExtractRejectsNonTwbx(t *testing.T) {
	if _, err := Extract("workbook.twb", ""); err == nil {
		t.Error("expected error for non-.twbx input")
	}
}

func TestExtractRejectsMissingWorkbook(t *testing.T) {
	twbx := makeTwbx(t, map[string]string{"readme.txt": "no workbook here"})
	if _, err := Extract(twbx, filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for archive without a .twb")
	}
}

func TestExtractRejectsZipSlip(t *testing.T) {
	twbx := makeTwbx(t, map[string]string{
		"../escape.twb": "<workbook />",
	})
	if _, err := Extract(twbx, filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for entry escaping the destination")
	}
}

func TestPackageRoundTrip(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "Data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "Sales.twb"), []byte("<workbook />"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "Data", "extract.hyper"), []byte("binary"), 0644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(t.TempDir(), "repacked.twbx")
	result, err := Package(src, output)
	if err != nil {
		t.Fatalf("Package failed: %v", err)
	}
	if result.Files != 2 {
		t.Errorf("files = %d, want 2", result.Files)
	}

	unpacked, err := Extract(output, filepath.Join(t.TempDir(), "unpacked"))
	if err != nil {
		t.Fatalf("re-extract failed: %v", err)
	}
	if unpacked.Files != 2 || filepath.Base(unpacked.Workbook) != "Sales.twb" {
		t.Errorf("round trip mismatch: %+v", unpacked)
	}
}

func TestPackageAppendsExtension(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "Sales.twb"), []byte("<workbook />"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(t.TempDir(), "repacked")
	result, err := Package(src, output)
	if err != nil {
		t.Fatalf("Package failed: %v", err)
	}
	if filepath.Ext(result.Output) != ".twbx" {
		t.Errorf("output = %s, want .twbx extension", result.Output)
	}
}
