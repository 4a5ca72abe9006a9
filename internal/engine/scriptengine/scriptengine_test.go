package scriptengine

import (
	"testing"

	"github.com/skaji/quicklint-daemon/internal/lint"
)

func lintText(t *testing.T, e *Engine, text string) []lint.Diagnostic {
	t.Helper()
	handle, err := e.CreateDocument(text)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	diags, err := e.Lint(handle)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	return diags
}

func TestRedeclaration(t *testing.T) {
	diags := lintText(t, New(Options{}), "let x;let x;")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %+v", len(diags), diags)
	}
	if diags[0].Message != "redeclaration of variable: x" || diags[0].Severity != lint.SeverityError {
		t.Fatalf("unexpected diagnostic: %+v", diags[0])
	}
}

func TestSeverityMix(t *testing.T) {
	diags := lintText(t, New(Options{}), "let x;let x;\nundeclaredVariable")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %+v", len(diags), diags)
	}
	if diags[0].Message != "redeclaration of variable: x" || diags[0].Severity != lint.SeverityError {
		t.Fatalf("unexpected first diagnostic: %+v", diags[0])
	}
	if diags[1].Message != "use of undeclared variable: undeclaredVariable" || diags[1].Severity != lint.SeverityWarning {
		t.Fatalf("unexpected second diagnostic: %+v", diags[1])
	}
}

func TestLineCommentsAreIgnored(t *testing.T) {
	diags := lintText(t, New(Options{}), "let x;let x; // done")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %+v", len(diags), diags)
	}
	want := lint.Range{Start: lint.Position{Line: 0, Character: 10}, End: lint.Position{Line: 0, Character: 11}}
	if diags[0].Range != want {
		t.Fatalf("unexpected range: got %+v want %+v", diags[0].Range, want)
	}
}

func TestApplyChangeAppend(t *testing.T) {
	e := New(Options{})
	handle, err := e.CreateDocument("let x;")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	appends := []string{"l", "e", "t", " ", "x", ";", " ", "/", "/", " ", "d", "o", "n", "e"}
	end := lint.Position{Line: 0, Character: 6}
	for _, ch := range appends {
		if err := e.ApplyChange(handle, lint.Change{HasRange: true, Range: lint.Range{Start: end, End: end}, Text: ch}); err != nil {
			t.Fatalf("ApplyChange: %v", err)
		}
		end.Character++
	}
	diags, err := e.Lint(handle)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(diags) != 1 || diags[0].Message != "redeclaration of variable: x" {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	want := lint.Range{Start: lint.Position{Line: 0, Character: 10}, End: lint.Position{Line: 0, Character: 11}}
	if diags[0].Range != want {
		t.Fatalf("unexpected range: got %+v want %+v", diags[0].Range, want)
	}
}

func TestAllowRedeclarationDirective(t *testing.T) {
	text := "// " + allowRedeclarationDirective + "\nlet x;let x;"
	diags := lintText(t, New(Options{}), text)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestDestroyedHandleIsRejected(t *testing.T) {
	e := New(Options{})
	handle, _ := e.CreateDocument("let x;")
	if err := e.DestroyDocument(handle); err != nil {
		t.Fatalf("DestroyDocument: %v", err)
	}
	if _, err := e.Lint(handle); err == nil {
		t.Fatal("expected error linting a destroyed handle")
	}
}
