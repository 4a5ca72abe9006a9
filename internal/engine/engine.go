// Package engine defines the contract for the opaque linting engine that a
// worker process hosts. Concrete implementations (internal/engine/scriptengine,
// internal/engine/graphqlengine) live in their own packages; nothing in the
// orchestrator or process layers knows which one it is driving.
package engine

import (
	"errors"

	"github.com/skaji/quicklint-daemon/internal/lint"
)

// ErrCrashed is returned by an Engine operation to signal that the worker
// hosting it has died. Once an operation returns ErrCrashed the Engine is
// treated as unusable: process.WorkerHandle fails every later operation on
// it with ErrCrashed without calling into the Engine again.
var ErrCrashed = errors.New("engine: worker process crashed")

// Engine is the operation set of one linting worker. It has no knowledge of
// documents, editors, or crash recovery — that lives entirely in
// internal/process and internal/orchestrator.
type Engine interface {
	// CreateDocument initializes an engine-side document from text and
	// returns a handle by which it can be referenced.
	CreateDocument(text string) (lint.DocHandle, error)
	// ApplyChange incrementally mutates the engine-side document identified
	// by handle. The engine must never read anything but the change itself.
	ApplyChange(handle lint.DocHandle, change lint.Change) error
	// Lint returns diagnostics for the document's current engine-side text.
	Lint(handle lint.DocHandle) ([]lint.Diagnostic, error)
	// DestroyDocument releases engine resources for handle. Errors from a
	// crashed engine are conventionally ignored by callers.
	DestroyDocument(handle lint.DocHandle) error
}

// Factory constructs a fresh Engine instance, one per worker generation.
type Factory func() Engine
