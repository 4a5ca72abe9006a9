package process

import "testing"

func TestCrashLogRecordsAndReads(t *testing.T) {
	log, err := OpenCrashLog(":memory:")
	if err != nil {
		t.Fatalf("OpenCrashLog: %v", err)
	}
	defer log.Close()

	log.Record("worker-1")
	log.Record("worker-2")

	events, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].WorkerID != "worker-2" {
		t.Fatalf("expected most recent first, got %+v", events)
	}
}

func TestNilCrashLogIsSafe(t *testing.T) {
	var log *CrashLog
	log.Record("worker-1")
	if _, err := log.Recent(5); err != nil {
		t.Fatalf("Recent on nil log: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close on nil log: %v", err)
	}
}
