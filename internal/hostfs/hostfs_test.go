package hostfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProbe_ReadFileAndExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "skin.xml"), []byte("<Skin/>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p := New()
	path := filepath.ToSlash(filepath.Join(dir, "skin.xml"))

	if !p.Exists(path) {
		t.Fatalf("expected %q to exist", path)
	}
	text, ok := p.ReadFile(path)
	if !ok || text != "<Skin/>" {
		t.Fatalf("want (%q, true), got (%q, %v)", "<Skin/>", text, ok)
	}
	if _, ok := p.ReadFile(filepath.ToSlash(filepath.Join(dir, "missing.xml"))); ok {
		t.Fatalf("expected ReadFile to fail for a nonexistent file")
	}
}

func TestProbe_IsDirAndReadDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a.xml"), []byte("<Skin/>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p := New()
	root := filepath.ToSlash(dir)
	subPath := filepath.ToSlash(sub)

	if !p.IsDir(root) {
		t.Fatalf("expected %q to be reported as a directory", root)
	}
	if p.IsDir(filepath.ToSlash(filepath.Join(sub, "a.xml"))) {
		t.Fatalf("did not expect a regular file to be reported as a directory")
	}
	names, ok := p.ReadDir(root)
	if !ok || len(names) != 1 || names[0] != "sub" {
		t.Fatalf("want ([sub], true), got (%v, %v)", names, ok)
	}
	names, ok = p.ReadDir(subPath)
	if !ok || len(names) != 1 || names[0] != "a.xml" {
		t.Fatalf("want ([a.xml], true), got (%v, %v)", names, ok)
	}
}

func TestProbe_ModTimeMatchesWrittenFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "skin.xml")
	if err := os.WriteFile(target, []byte("<Skin/>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	wantFI, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	p := New()
	got, ok := p.ModTime(filepath.ToSlash(target))
	if !ok || !got.Equal(wantFI.ModTime()) {
		t.Fatalf("want ModTime %v, got %v (ok=%v)", wantFI.ModTime(), got, ok)
	}
	if _, ok := p.ModTime(filepath.ToSlash(filepath.Join(dir, "missing.xml"))); ok {
		t.Fatalf("expected ModTime to fail for a nonexistent file")
	}
}

func TestDocumentProvider_GetReadsOffDisk(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "skin.xml")
	if err := os.WriteFile(target, []byte("<Skin/>"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	dp := DocumentProvider{Probe: New()}
	text, ok := dp.Get(filepath.ToSlash(target))
	if !ok || text != "<Skin/>" {
		t.Fatalf("want (%q, true), got (%q, %v)", "<Skin/>", text, ok)
	}
}
