package process

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/skaji/quicklint-daemon/internal/engine"
)

// Manager is a light registry that hands out a shared WorkerHandle to one or
// more orchestrators, creating one lazily on first request and whenever the
// previously-held one is observed crashed.
type Manager struct {
	newEngine engine.Factory
	injector  FaultInjector
	crashLog  *CrashLog

	mu            sync.Mutex
	current       *WorkerHandle
	numCreated    int
	lastCrashAt   time.Time
	haveLastCrash bool

	group singleflight.Group
}

// NewManager constructs a Manager. newEngine builds a fresh engine.Engine for
// each worker generation; injector may be nil (defaults to NoopInjector);
// crashLog may be nil to disable the crash ledger entirely.
func NewManager(newEngine engine.Factory, injector FaultInjector, crashLog *CrashLog) *Manager {
	if injector == nil {
		injector = NoopInjector{}
	}
	return &Manager{
		newEngine: newEngine,
		injector:  injector,
		crashLog:  crashLog,
	}
}

// AcquireWorker returns a live WorkerHandle, provisioning one lazily on first
// call and whenever the previously-held one is crashed. Concurrent callers
// collapse onto a single provisioning via singleflight, so they observe the
// same handle while it is healthy.
func (m *Manager) AcquireWorker() *WorkerHandle {
	m.mu.Lock()
	if m.current != nil && !m.current.Crashed() {
		h := m.current
		m.mu.Unlock()
		return h
	}
	m.mu.Unlock()

	v, _, _ := m.group.Do("acquire", func() (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.current != nil && !m.current.Crashed() {
			return m.current, nil
		}
		m.numCreated++
		generation := m.numCreated
		handle := newWorkerHandle(m.newEngine(), m.injector)
		m.current = handle
		slog.Debug("provisioned worker", "worker", handle.ID(), "generation", generation)
		return handle, nil
	})
	return v.(*WorkerHandle)
}

// ReportCrashed marks handle terminally crashed and, if it is still the
// manager's active worker, evicts it so the next AcquireWorker provisions a
// fresh one. This is a monotonic tie-break: once ReportCrashed(H) returns,
// no subsequent AcquireWorker call can return H, even if another
// orchestrator is still holding a reference to it.
func (m *Manager) ReportCrashed(handle *WorkerHandle) {
	handle.markCrashed()

	m.mu.Lock()
	if m.current == handle {
		m.current = nil
	}
	since := "no prior crash observed"
	if m.haveLastCrash {
		since = humanize.Time(m.lastCrashAt)
	}
	m.lastCrashAt = time.Now()
	m.haveLastCrash = true
	m.mu.Unlock()

	if m.crashLog != nil {
		m.crashLog.Record(handle.ID())
	}
	slog.Warn("worker crashed", "worker", handle.ID(), "previousCrash", since)
}

// NumberOfProcessesEverCreated is the monotonically non-decreasing count of
// workers this manager has ever provisioned.
func (m *Manager) NumberOfProcessesEverCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numCreated
}
