package orchestrator

import "github.com/skaji/quicklint-daemon/internal/lint"

// Document is the editor-owned document a DocumentLinter lints. The linter
// reads Text only when first materializing an engine-side
// document or recovering from a crash — never to apply an edit, since a
// later edit may already have mutated it by the time an earlier one is
// processed.
type Document interface {
	Text() string
	SetDiagnostics(diagnostics []lint.Diagnostic)
	RemoveDiagnostics()
}
