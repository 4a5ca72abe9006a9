package process

import (
	"sync"
	"testing"

	"github.com/skaji/quicklint-daemon/internal/engine"
	"github.com/skaji/quicklint-daemon/internal/engine/scriptengine"
)

func newTestManager() *Manager {
	return NewManager(func() engine.Engine { return scriptengine.New(scriptengine.Options{}) }, nil, nil)
}

func TestAcquireWorkerCreatesLazily(t *testing.T) {
	m := newTestManager()
	if got := m.NumberOfProcessesEverCreated(); got != 0 {
		t.Fatalf("expected 0 processes before first acquire, got %d", got)
	}
	h := m.AcquireWorker()
	if h == nil {
		t.Fatal("expected a worker handle")
	}
	if got := m.NumberOfProcessesEverCreated(); got != 1 {
		t.Fatalf("expected 1 process created, got %d", got)
	}
}

func TestAcquireWorkerReusesHealthyHandle(t *testing.T) {
	m := newTestManager()
	a := m.AcquireWorker()
	b := m.AcquireWorker()
	if a != b {
		t.Fatal("expected the same handle while healthy")
	}
	if got := m.NumberOfProcessesEverCreated(); got != 1 {
		t.Fatalf("expected exactly 1 process created, got %d", got)
	}
}

func TestConcurrentAcquireCollapsesToOneWorker(t *testing.T) {
	m := newTestManager()
	const n = 50
	handles := make([]*WorkerHandle, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			handles[i] = m.AcquireWorker()
		}()
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if handles[i] != handles[0] {
			t.Fatalf("expected all concurrent acquires to return the same handle")
		}
	}
	if got := m.NumberOfProcessesEverCreated(); got != 1 {
		t.Fatalf("expected exactly 1 process created, got %d", got)
	}
}

func TestReportCrashedForcesFreshWorker(t *testing.T) {
	m := newTestManager()
	a := m.AcquireWorker()
	m.ReportCrashed(a)

	if !a.Crashed() {
		t.Fatal("expected handle to be marked crashed")
	}

	b := m.AcquireWorker()
	if a == b {
		t.Fatal("expected a different handle after ReportCrashed")
	}
	if got := m.NumberOfProcessesEverCreated(); got != 2 {
		t.Fatalf("expected 2 processes created, got %d", got)
	}
}

func TestReportCrashedIsMonotonic(t *testing.T) {
	m := newTestManager()
	a := m.AcquireWorker()
	m.ReportCrashed(a)
	for i := 0; i < 5; i++ {
		if h := m.AcquireWorker(); h == a {
			t.Fatal("acquired a handle already reported crashed")
		}
	}
}
