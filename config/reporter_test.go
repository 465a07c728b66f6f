package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	stored := filepath.Join(dir, "out.css")
	if err := os.WriteFile(stored, []byte(".a {\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	copied := filepath.Join(dir, "in.css")
	if err := os.WriteFile(copied, []byte("@layer a {}"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("output.css", stored)
	if err := r.StoreCopy("input.css", copied); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	// file changes after the copy was taken
	if err := os.WriteFile(copied, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	r.StoreData("tree.txt", []byte("root"))
	r.Store("missing.css", filepath.Join(dir, "missing.css"))

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, conf.Destination)
	want := map[string]string{
		"output.css": ".a {\n}\n",
		"input.css":  "@layer a {}",
		"tree.txt":   "root",
	}
	for name, content := range want {
		if got, ok := files[name]; !ok || got != content {
			t.Errorf("entry %s = %q (present %v), want %q", name, got, ok, content)
		}
	}
	if _, ok := files["missing.css"]; ok {
		t.Error("absent file should not be archived")
	}
	if !strings.Contains(files["MANIFEST"], "input.css") {
		t.Errorf("MANIFEST does not list input.css:\n%s", files["MANIFEST"])
	}
	if r.ID() == "" || !strings.HasPrefix(files["MANIFEST"], "report\t"+r.ID()+"\n") {
		t.Errorf("MANIFEST does not start with report id %q:\n%s", r.ID(), files["MANIFEST"])
	}
}

func TestReport_StoreCopyRemovesTemporary(t *testing.T) {
	dir := t.TempDir()
	r := &Report{entries: make(map[string]entry)}
	f, err := os.Create(filepath.Join(dir, "r.zip"))
	if err != nil {
		t.Fatal(err)
	}
	r.file = f

	src := filepath.Join(dir, "a.css")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("a.css", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	if err := r.StoreCopy("a.css", src); err != nil {
		t.Fatalf("second StoreCopy() error: %v", err)
	}
	if len(r.entries) != 2 {
		t.Fatalf("expected versioned second entry, got %d entries", len(r.entries))
	}
	var copies []string
	for _, e := range r.entries {
		copies = append(copies, e.actual)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	for _, c := range copies {
		if _, err := os.Stat(c); !os.IsNotExist(err) {
			t.Errorf("expected temporary copy %s to be removed", c)
		}
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source file should not be removed: %v", err)
	}
}

func TestReport_StoreCopyMissing(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.StoreCopy("x", filepath.Join(t.TempDir(), "nope.css")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name on nil report = %q, want empty", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReport_IDUnique(t *testing.T) {
	dir := t.TempDir()
	a, err := (&ReporterConfig{Destination: filepath.Join(dir, "a.zip")}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := (&ReporterConfig{Destination: filepath.Join(dir, "b.zip")}).Prepare()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.ID() == b.ID() {
		t.Errorf("expected distinct report ids, got %q twice", a.ID())
	}
	if (*Report)(nil).ID() != "" {
		t.Error("expected empty id for nil report")
	}
}
