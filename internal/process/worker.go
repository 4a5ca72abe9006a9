package process

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skaji/quicklint-daemon/internal/engine"
	"github.com/skaji/quicklint-daemon/internal/lint"
)

// WorkerHandle is a reference to one live worker hosting one engine
// instance. It is opaque to callers beyond the four engine operations it
// exposes; the first operation to fail marks it permanently crashed, and
// every operation after that fails synchronously with the same error so
// callers never race a zombie engine.
type WorkerHandle struct {
	id       string
	eng      engine.Engine
	injector FaultInjector

	mu      sync.Mutex
	crashed bool
	docs    map[lint.DocHandle]struct{}
}

func newWorkerHandle(eng engine.Engine, injector FaultInjector) *WorkerHandle {
	return &WorkerHandle{
		id:       uuid.NewString(),
		eng:      eng,
		injector: injector,
		docs:     make(map[lint.DocHandle]struct{}),
	}
}

// ID identifies this worker generation, for logs and the crash ledger.
func (w *WorkerHandle) ID() string { return w.id }

// Crashed reports whether this handle has been marked permanently unusable.
func (w *WorkerHandle) Crashed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.crashed
}

// CreateDocument creates an engine-side document initialized to text.
func (w *WorkerHandle) CreateDocument(text string) (lint.DocHandle, error) {
	if err := w.enter("createDocument"); err != nil {
		return 0, err
	}
	handle, err := w.eng.CreateDocument(text)
	if err != nil {
		w.markCrashed()
		return 0, translate(err)
	}
	w.mu.Lock()
	w.docs[handle] = struct{}{}
	w.mu.Unlock()
	return handle, nil
}

// ApplyChange incrementally mutates the engine-side document.
func (w *WorkerHandle) ApplyChange(handle lint.DocHandle, change lint.Change) error {
	if err := w.enter("applyChange"); err != nil {
		return err
	}
	if err := w.eng.ApplyChange(handle, change); err != nil {
		w.markCrashed()
		return translate(err)
	}
	return nil
}

// Lint returns diagnostics for the document's current engine-side text.
func (w *WorkerHandle) Lint(handle lint.DocHandle) ([]lint.Diagnostic, error) {
	if err := w.enter("lint"); err != nil {
		return nil, err
	}
	diags, err := w.eng.Lint(handle)
	if err != nil {
		w.markCrashed()
		return nil, translate(err)
	}
	return diags, nil
}

// DestroyDocument releases engine resources for handle. A crash observed
// here is not propagated: destruction is best-effort cleanup.
func (w *WorkerHandle) DestroyDocument(handle lint.DocHandle) {
	if err := w.enter("destroyDocument"); err != nil {
		return
	}
	if err := w.eng.DestroyDocument(handle); err != nil {
		w.markCrashed()
		return
	}
	w.mu.Lock()
	delete(w.docs, handle)
	w.mu.Unlock()
}

// enter runs the fault-injection hook and rejects the call outright if this
// handle is already crashed, before the underlying engine call is made.
func (w *WorkerHandle) enter(op string) error {
	w.mu.Lock()
	if w.crashed {
		w.mu.Unlock()
		return engine.ErrCrashed
	}
	w.mu.Unlock()

	if err := w.injector.MaybeInject(w.id, op); err != nil {
		w.markCrashed()
		return translate(err)
	}
	return nil
}

func (w *WorkerHandle) markCrashed() {
	w.mu.Lock()
	w.crashed = true
	w.mu.Unlock()
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	return engine.ErrCrashed
}
