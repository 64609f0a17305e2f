package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cleanSource = "package q\n\nconst QOne = `--sql 0f5e6c1a-3b7d-4e2a-9c1f-2a4b6c8d0e12\nSELECT 1`\n\nconst QTwo = `--sql 7a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d\nINSERT INTO t VALUES ($1)`\n\nconst Label = \"selected items\"\n"

func TestLintSourceAcceptsMarkedQueries(t *testing.T) {
	l := newLinter()
	if err := l.lintSource("clean.go", cleanSource); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(l.violations) != 0 {
		t.Fatalf("expected no violations, got %v", l.violations)
	}
}

func TestLintSourceReportsMissingMarker(t *testing.T) {
	src := "package q\n\nconst QBad = `\n  SELECT * FROM generations`\n"
	l := newLinter()
	if err := l.lintSource("bad.go", src); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(l.violations) != 1 {
		t.Fatalf("expected one violation, got %v", l.violations)
	}
	v := l.violations[0]
	if v.name != "QBad" || v.line != 3 || !strings.Contains(v.message, "missing") {
		t.Fatalf("unexpected violation %+v", v)
	}
}

func TestLintSourceReportsDuplicateMarkersAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	dup := "package q\n\nconst QCopy = `--sql 0f5e6c1a-3b7d-4e2a-9c1f-2a4b6c8d0e12\nUPDATE t SET a = 1`\n"
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte(cleanSource), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.go"), []byte(dup), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b_test.go"), []byte("package q\n\nconst QTest = `SELECT 2`\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := newLinter()
	if err := l.lintPath(dir); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(l.violations) != 1 {
		t.Fatalf("expected one violation, got %v", l.violations)
	}
	if got := l.violations[0].message; got != "marker already used by QOne" {
		t.Fatalf("unexpected message %q", got)
	}
}
