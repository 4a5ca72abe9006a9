package schedule

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoadStateRoundTrips(t *testing.T) {
	e := New()
	e.NextCoinFlip()
	e.NextCoinFlip()
	e.Lap()
	e.NextCoinFlip()

	path := filepath.Join(t.TempDir(), "enumerator.msgpack")
	if err := e.SaveState(path); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	restored, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	want := e.NextCoinFlip()
	got := restored.NextCoinFlip()
	if got != want {
		t.Fatalf("restored enumerator diverged: got %v, want %v", got, want)
	}
	if restored.IsDone() != e.IsDone() {
		t.Fatalf("restored done flag mismatch: got %v, want %v", restored.IsDone(), e.IsDone())
	}
}
