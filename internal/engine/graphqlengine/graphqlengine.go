// Package graphqlengine is an alternate engine.Engine implementation that
// validates GraphQL operation documents, optionally against a preloaded
// schema, using gqlparser's query parser and validator.
package graphqlengine

import (
	"errors"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/skaji/quicklint-daemon/internal/engine"
	"github.com/skaji/quicklint-daemon/internal/lint"
)

type document struct {
	text string
}

// Engine validates GraphQL operation documents. With no schema it checks
// syntax only; with a schema it validates fields, types, and fragments too.
type Engine struct {
	mu     sync.Mutex
	docs   map[lint.DocHandle]*document
	nextID lint.DocHandle
	schema *ast.Schema
}

// New constructs a graphql Engine. schema may be nil.
func New(schema *ast.Schema) *Engine {
	return &Engine{docs: make(map[lint.DocHandle]*document), schema: schema}
}

func (e *Engine) CreateDocument(text string) (lint.DocHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.docs[id] = &document{text: text}
	return id, nil
}

func (e *Engine) ApplyChange(handle lint.DocHandle, change lint.Change) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, ok := e.docs[handle]
	if !ok {
		return engine.ErrCrashed
	}
	if !change.HasRange {
		doc.text = change.Text
		return nil
	}
	doc.text = applyRangeChange(doc.text, change)
	return nil
}

func (e *Engine) Lint(handle lint.DocHandle) ([]lint.Diagnostic, error) {
	e.mu.Lock()
	doc, ok := e.docs[handle]
	schema := e.schema
	e.mu.Unlock()
	if !ok {
		return nil, engine.ErrCrashed
	}

	if schema == nil {
		_, err := parser.ParseQuery(&ast.Source{Input: doc.text})
		return diagnosticsFromErr(err), nil
	}
	_, err := gqlparser.LoadQuery(schema, doc.text)
	return diagnosticsFromErr(err), nil
}

func (e *Engine) DestroyDocument(handle lint.DocHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, handle)
	return nil
}

// diagnosticsFromErr converts a gqlparser error into diagnostics, unwrapping
// gqlerror.List and single *gqlerror.Error alike.
func diagnosticsFromErr(err error) []lint.Diagnostic {
	if err == nil {
		return nil
	}

	var list gqlerror.List
	if errors.As(err, &list) {
		return diagnosticsFromList(list)
	}
	var single *gqlerror.Error
	if errors.As(err, &single) {
		return diagnosticsFromList(gqlerror.List{single})
	}
	return diagnosticsFromList(gqlerror.List{gqlerror.Wrap(err)})
}

func diagnosticsFromList(list gqlerror.List) []lint.Diagnostic {
	diagnostics := make([]lint.Diagnostic, 0, len(list))
	for _, gqlErr := range list {
		diagnostics = append(diagnostics, diagnosticFromGqlError(gqlErr))
	}
	return diagnostics
}

func diagnosticFromGqlError(err *gqlerror.Error) lint.Diagnostic {
	startLine, startChar := 0, 0
	if len(err.Locations) > 0 {
		startLine = err.Locations[0].Line - 1
		startChar = err.Locations[0].Column - 1
	}
	if startLine < 0 {
		startLine = 0
	}
	if startChar < 0 {
		startChar = 0
	}

	return lint.Diagnostic{
		Code:     "graphql",
		Message:  err.Message,
		Severity: lint.SeverityError,
		Range: lint.Range{
			Start: lint.Position{Line: startLine, Character: startChar},
			End:   lint.Position{Line: startLine, Character: startChar + 1},
		},
	}
}

func applyRangeChange(text string, change lint.Change) string {
	lineStarts := computeLineStarts(text)
	start := positionToOffset(lineStarts, text, change.Range.Start)
	end := positionToOffset(lineStarts, text, change.Range.End)
	if end < start {
		end = start
	}
	return text[:start] + change.Text + text[end:]
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
