// Package archive packs and unpacks .twbx workbook archives, which are
// plain zip files wrapping the .twb document plus its data extracts.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractResult describes an unpacked archive.
type ExtractResult struct {
	Dir      string
	Workbook string // path to the .twb inside Dir
	Files    int
}

// PackageResult describes a repacked archive.
type PackageResult struct {
	Output string
	Files  int
}

// Extract unpacks a .twbx archive into destDir and locates the workbook
// document inside it. An empty destDir extracts next to the archive.
func Extract(twbxPath, destDir string) (*ExtractResult, error) {
	if !strings.EqualFold(filepath.Ext(twbxPath), ".twbx") {
		return nil, fmt.Errorf("not a .twbx file: %s", twbxPath)
	}
	if destDir == "" {
		destDir = strings.TrimSuffix(twbxPath, filepath.Ext(twbxPath))
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating extract directory: %w", err)
	}

	r, err := zip.OpenReader(twbxPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	result := &ExtractResult{Dir: destDir}
	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("creating directory %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		result.Files++
		if result.Workbook == "" && strings.EqualFold(filepath.Ext(f.Name), ".twb") {
			result.Workbook = target
		}
	}
	if result.Workbook == "" {
		return nil, fmt.Errorf("no .twb found in archive %s", twbxPath)
	}
	return result, nil
}

// Package zips srcDir back into a .twbx archive.
func Package(srcDir, output string) (*PackageResult, error) {
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source directory not found: %s", srcDir)
	}
	if !strings.EqualFold(filepath.Ext(output), ".twbx") {
		output += ".twbx"
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	result := &PackageResult{Output: output}

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		if _, err := io.Copy(w, in); err != nil {
			return err
		}
		result.Files++
		return nil
	})
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("packaging %s: %w", srcDir, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return result, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}
	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s in archive: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return out.Close()
}

// safeJoin rejects entries that would escape the destination directory.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}
