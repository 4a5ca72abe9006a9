// Package scriptengine is the default engine.Engine implementation: a small
// deterministic scope checker for a JavaScript-like toy language. It flags
// redeclared `let` bindings and uses of undeclared identifiers.
//
// It is intentionally not a real parser: this exists only to give the
// orchestrator and process layers something real to drive.
package scriptengine

import (
	"regexp"
	"strings"
	"sync"

	"github.com/skaji/quicklint-daemon/internal/engine"
	"github.com/skaji/quicklint-daemon/internal/lint"
)

var wordPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// allowRedeclarationDirective lets a document opt out of the redeclaration
// check via a marker on its first line instead of a global setting applying
// to every document.
const allowRedeclarationDirective = "quicklint-allow-redeclaration"

// Options configures documents created by an Engine.
type Options struct {
	// AllowRedeclaration disables the redeclaration diagnostic by default.
	// A document with allowRedeclarationDirective on its first line has the
	// diagnostic disabled regardless; no directive turns it back on.
	AllowRedeclaration bool
}

type document struct {
	text               string
	allowRedeclaration bool
}

// Engine is the toy scope-checking engine.Engine implementation.
type Engine struct {
	mu       sync.Mutex
	docs     map[lint.DocHandle]*document
	nextID   lint.DocHandle
	defaults Options
}

// New constructs an Engine. Each worker generation gets its own instance;
// engine state never survives a crash.
func New(defaults Options) *Engine {
	return &Engine{
		docs:     make(map[lint.DocHandle]*document),
		defaults: defaults,
	}
}

func (e *Engine) CreateDocument(text string) (lint.DocHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.docs[id] = &document{
		text:               text,
		allowRedeclaration: resolveAllowRedeclaration(text, e.defaults.AllowRedeclaration),
	}
	return id, nil
}

func (e *Engine) ApplyChange(handle lint.DocHandle, change lint.Change) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, ok := e.docs[handle]
	if !ok {
		return engine.ErrCrashed
	}
	doc.text = applyChange(doc.text, change)
	return nil
}

func (e *Engine) Lint(handle lint.DocHandle) ([]lint.Diagnostic, error) {
	e.mu.Lock()
	doc, ok := e.docs[handle]
	e.mu.Unlock()
	if !ok {
		return nil, engine.ErrCrashed
	}
	return analyze(doc.text, doc.allowRedeclaration), nil
}

func (e *Engine) DestroyDocument(handle lint.DocHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, handle)
	return nil
}

func resolveAllowRedeclaration(text string, fallback bool) bool {
	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	if strings.Contains(firstLine, allowRedeclarationDirective) {
		return true
	}
	return fallback
}

func applyChange(text string, change lint.Change) string {
	if !change.HasRange {
		return change.Text
	}
	lineStarts := computeLineStarts(text)
	start := positionToOffset(lineStarts, text, change.Range.Start)
	end := positionToOffset(lineStarts, text, change.Range.End)
	if end < start {
		end = start
	}
	return text[:start] + change.Text + text[end:]
}

func analyze(text string, allowRedeclaration bool) []lint.Diagnostic {
	scanText := stripLineComments(text)
	lineStarts := computeLineStarts(text)
	tokens := wordPattern.FindAllStringIndex(scanText, -1)

	declared := make(map[string]bool)
	var diagnostics []lint.Diagnostic
	afterLet := false
	for _, tok := range tokens {
		word := scanText[tok[0]:tok[1]]
		switch {
		case word == "let":
			afterLet = true
		case afterLet:
			afterLet = false
			if declared[word] && !allowRedeclaration {
				diagnostics = append(diagnostics, lint.Diagnostic{
					Code:     "redeclaration",
					Message:  "redeclaration of variable: " + word,
					Severity: lint.SeverityError,
					Range:    rangeFor(lineStarts, tok[0], tok[1]),
				})
			}
			declared[word] = true
		default:
			if !declared[word] {
				diagnostics = append(diagnostics, lint.Diagnostic{
					Code:     "undeclared-variable",
					Message:  "use of undeclared variable: " + word,
					Severity: lint.SeverityWarning,
					Range:    rangeFor(lineStarts, tok[0], tok[1]),
				})
			}
		}
	}
	return diagnostics
}

// stripLineComments blanks out `// ...` comment content with spaces so that
// byte offsets computed against the original text remain valid; it never
// changes the text's length or line structure.
func stripLineComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	n := len(text)
	for i := 0; i < n; {
		if text[i] == '\n' {
			b.WriteByte('\n')
			i++
			continue
		}
		if i+1 < n && text[i] == '/' && text[i+1] == '/' {
			for i < n && text[i] != '\n' {
				b.WriteByte(' ')
				i++
			}
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func rangeFor(lineStarts []int, startOffset, endOffset int) lint.Range {
	return lint.Range{
		Start: offsetToPosition(lineStarts, startOffset),
		End:   offsetToPosition(lineStarts, endOffset),
	}
}

func offsetToPosition(lineStarts []int, offset int) lint.Position {
	line := 0
	for i, s := range lineStarts {
		if s <= offset {
			line = i
			continue
		}
		break
	}
	return lint.Position{Line: line, Character: offset - lineStarts[line]}
}

func positionToOffset(lineStarts []int, text string, pos lint.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(lineStarts) {
		return len(text)
	}
	lineStart := lineStarts[pos.Line]
	lineEnd := len(text)
	if pos.Line+1 < len(lineStarts) {
		lineEnd = lineStarts[pos.Line+1] - 1
	}
	offset := lineStart + pos.Character
	if offset < lineStart {
		offset = lineStart
	}
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset
}
