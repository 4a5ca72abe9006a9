package orchestrator

import "errors"

// ErrDisposed is returned by any operation on a Disposed linter, and by
// operations that were still queued (or retrying through a crash) when
// disposeAsync was called.
var ErrDisposed = errors.New("orchestrator: document linter disposed")

// ErrLintingCrashed is surfaced from editorChangedVisibilityAsync once its
// recovery cap is exhausted without reaching a successful lint.
// textChangedAsync never surfaces it: it retries full-open recovery without
// bound instead of giving up. The linter remains usable either way; the
// next call re-enters recovery.
var ErrLintingCrashed = errors.New("orchestrator: linting crashed")
