package orchestrator

import (
	"sync"

	"github.com/skaji/quicklint-daemon/internal/lint"
	"github.com/skaji/quicklint-daemon/internal/process"
)

type opKind int

const (
	opVisibility opKind = iota
	opApplyChanges
)

// pendingOp is one queued request, delivered a single result on result once
// its turn to execute arrives.
type pendingOp struct {
	kind    opKind
	changes []lint.Change
	result  chan error
}

// DocumentLinter is a per-document state
// machine that serializes editorChangedVisibilityAsync/textChangedAsync/
// disposeAsync calls into a strict FIFO queue and drains it with a
// background goroutine that only exists while there is work to do — there is
// no permanently-running goroutine per document.
type DocumentLinter struct {
	doc           Document
	manager       *process.Manager
	maxRecoveries int

	mu         sync.Mutex
	state      State
	engDoc     lint.DocHandle
	engWorker  *process.WorkerHandle
	haveEngDoc bool
	queue      []*pendingOp
	executing  bool
	disposed   bool

	disposeOnce sync.Once
	disposeDone chan struct{}
}

// New constructs a DocumentLinter over doc, acquiring workers from manager.
// The linter starts Unopened; nothing is submitted to a worker until the
// first editorChangedVisibilityAsync or textChangedAsync call.
func New(doc Document, manager *process.Manager, opts ...Option) *DocumentLinter {
	l := &DocumentLinter{
		doc:           doc,
		manager:       manager,
		maxRecoveries: defaultMaxRecoveries,
		disposeDone:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports the linter's current state.
func (l *DocumentLinter) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// EditorChangedVisibilityAsync notifies the linter that the document became
// visible (or was reopened) in the editor. If no engine-side document exists
// yet it is materialized from doc.Text(); otherwise the existing engine
// document is simply relinted. Recovery from a crash is capped at
// maxRecoveries attempts, after which ErrLintingCrashed is surfaced.
func (l *DocumentLinter) EditorChangedVisibilityAsync() error {
	return l.submit(&pendingOp{kind: opVisibility})
}

// TextChangedAsync notifies the linter that the editor applied changes to
// the document. Unlike EditorChangedVisibilityAsync, this never gives up on
// a crashing worker: it keeps retrying full-open recovery until it succeeds
// or the linter is disposed.
func (l *DocumentLinter) TextChangedAsync(changes []lint.Change) error {
	return l.submit(&pendingOp{kind: opApplyChanges, changes: changes})
}

// DisposeAsync releases the linter's resources. It lets any in-flight
// operation finish naturally, fails every operation still queued behind it
// with ErrDisposed, and is idempotent: concurrent or repeated calls all
// block until the same finalization completes. DisposeAsync itself never
// returns an error.
func (l *DocumentLinter) DisposeAsync() error {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		<-l.disposeDone
		return nil
	}
	l.disposed = true
	executing := l.executing
	l.mu.Unlock()

	if !executing {
		l.doFinalizeDispose()
	} else {
		<-l.disposeDone
	}
	return nil
}

// submit enqueues op, starting the drain loop if it is not already running,
// and blocks until op has been executed (or rejected outright).
func (l *DocumentLinter) submit(op *pendingOp) error {
	op.result = make(chan error, 1)

	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return ErrDisposed
	}
	l.queue = append(l.queue, op)
	start := !l.executing
	if start {
		l.executing = true
	}
	l.mu.Unlock()

	if start {
		go l.drainLoop()
	}
	return <-op.result
}

// drainLoop processes queued operations one at a time, FIFO, exiting once
// the queue empties or the linter is disposed. Only one drainLoop ever runs
// at a time per DocumentLinter, guarded by the executing flag.
func (l *DocumentLinter) drainLoop() {
	for {
		l.mu.Lock()
		if l.disposed {
			pending := l.queue
			l.queue = nil
			l.executing = false
			l.mu.Unlock()
			for _, op := range pending {
				op.result <- ErrDisposed
			}
			l.doFinalizeDispose()
			return
		}
		if len(l.queue) == 0 {
			l.executing = false
			l.mu.Unlock()
			return
		}
		op := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		op.result <- l.execute(op)
	}
}

// execute runs one operation to completion, updating diagnostics and state
// on success.
func (l *DocumentLinter) execute(op *pendingOp) error {
	l.setState(StateInitializing)

	diags, err := l.runOp(op)
	if err != nil {
		if err != ErrDisposed {
			// Leave the linter Initializing: the next call re-enters
			// recovery from a clean slate rather than claiming Ready.
			l.setState(StateInitializing)
		}
		return err
	}

	l.doc.SetDiagnostics(diags)
	l.setState(StateReady)
	return nil
}

// runOp drives one operation through worker acquisition and crash recovery.
// A crash at any step evicts the worker, forces a fresh engine-side open on
// the next attempt, and retries — except for opVisibility, which gives up
// after maxRecoveries retries, and any attempt after the first, which bails
// out immediately if the linter has since been disposed.
//
// Once an engine-side document exists, its handle is only ever replayed
// against the exact *process.WorkerHandle that minted it — never against
// whatever AcquireWorker happens to return next, since a numeric DocHandle
// is meaningless outside the worker generation that issued it. The manager
// is only consulted when a fresh open is needed.
func (l *DocumentLinter) runOp(op *pendingOp) ([]lint.Diagnostic, error) {
	needsOpen := !l.hasEngineDoc()

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if l.isDisposed() {
				return nil, ErrDisposed
			}
			if op.kind == opVisibility && l.maxRecoveries > 0 && attempt > l.maxRecoveries {
				return nil, ErrLintingCrashed
			}
		}

		var worker *process.WorkerHandle
		var handle lint.DocHandle

		if needsOpen {
			worker = l.manager.AcquireWorker()
			h, err := worker.CreateDocument(l.doc.Text())
			if err != nil {
				l.manager.ReportCrashed(worker)
				l.clearEngineDoc()
				needsOpen = true
				continue
			}
			handle = h
			l.setEngineDoc(handle, worker)
		} else {
			handle, worker = l.engineDocAndWorker()
			if op.kind == opApplyChanges {
				if err := l.applyAll(worker, handle, op.changes); err != nil {
					l.manager.ReportCrashed(worker)
					l.clearEngineDoc()
					needsOpen = true
					continue
				}
			}
		}

		diags, err := worker.Lint(handle)
		if err != nil {
			l.manager.ReportCrashed(worker)
			l.clearEngineDoc()
			needsOpen = true
			continue
		}
		return diags, nil
	}
}

// applyAll replays a batch of editor changes against the engine-side
// document, in order.
func (l *DocumentLinter) applyAll(worker *process.WorkerHandle, handle lint.DocHandle, changes []lint.Change) error {
	for _, change := range changes {
		if err := worker.ApplyChange(handle, change); err != nil {
			return err
		}
	}
	return nil
}

// doFinalizeDispose runs the terminal transition to Disposed exactly once,
// destroying any live engine-side document and waking every DisposeAsync
// caller blocked on disposeDone.
func (l *DocumentLinter) doFinalizeDispose() {
	l.disposeOnce.Do(func() {
		if handle, worker, ok := l.liveEngineDocForDispose(); ok {
			worker.DestroyDocument(handle)
		}
		l.doc.RemoveDiagnostics()
		l.setState(StateDisposed)
		close(l.disposeDone)
	})
}

func (l *DocumentLinter) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *DocumentLinter) isDisposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

func (l *DocumentLinter) hasEngineDoc() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.haveEngDoc
}

func (l *DocumentLinter) setEngineDoc(handle lint.DocHandle, worker *process.WorkerHandle) {
	l.mu.Lock()
	l.engDoc = handle
	l.engWorker = worker
	l.haveEngDoc = true
	l.mu.Unlock()
}

func (l *DocumentLinter) clearEngineDoc() {
	l.mu.Lock()
	l.haveEngDoc = false
	l.engDoc = 0
	l.engWorker = nil
	l.mu.Unlock()
}

// engineDocAndWorker returns the handle and the exact worker that minted
// it, as remembered on the linter — never a worker freshly pulled from the
// manager, since the handle is only meaningful paired with its own
// generation.
func (l *DocumentLinter) engineDocAndWorker() (lint.DocHandle, *process.WorkerHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engDoc, l.engWorker
}

// liveEngineDocForDispose returns the remembered engine document and its
// worker only if that worker is still healthy enough to attempt cleanup on.
func (l *DocumentLinter) liveEngineDocForDispose() (lint.DocHandle, *process.WorkerHandle, bool) {
	l.mu.Lock()
	have := l.haveEngDoc
	handle := l.engDoc
	worker := l.engWorker
	l.mu.Unlock()
	if !have || worker == nil || worker.Crashed() {
		return 0, nil, false
	}
	return handle, worker, true
}
