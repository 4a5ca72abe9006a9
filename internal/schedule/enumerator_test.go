package schedule

import "testing"

func TestZeroFlipRunCompletesInOneLap(t *testing.T) {
	e := New()
	if e.IsDone() {
		t.Fatal("expected not done before any lap")
	}
	e.Lap()
	if !e.IsDone() {
		t.Fatal("expected done after a zero-flip lap")
	}
}

func TestOneFlipPerLap(t *testing.T) {
	e := New()

	if got := e.NextCoinFlip(); got != false {
		t.Fatalf("lap 1: expected false, got %v", got)
	}
	e.Lap()
	if e.IsDone() {
		t.Fatal("expected not done after lap 1")
	}

	if got := e.NextCoinFlip(); got != true {
		t.Fatalf("lap 2: expected true, got %v", got)
	}
	e.Lap()
	if !e.IsDone() {
		t.Fatal("expected done after lap 2")
	}
}

func TestThreeFlipsPerLapEnumeratesAllEightInOrder(t *testing.T) {
	e := New()
	want := []string{"FFF", "FFT", "FTF", "FTT", "TFF", "TFT", "TTF", "TTT"}

	var got []string
	for i := 0; i < len(want); i++ {
		if e.IsDone() {
			t.Fatalf("enumerator finished early after %d laps", i)
		}
		a := e.NextCoinFlip()
		b := e.NextCoinFlip()
		c := e.NextCoinFlip()
		got = append(got, tupleString(a, b, c))
		e.Lap()
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lap %d: got %s, want %s (full: %v)", i+1, got[i], want[i], got)
		}
	}
	if !e.IsDone() {
		t.Fatal("expected done after the eighth lap")
	}
}

func tupleString(bs ...bool) string {
	s := make([]byte, len(bs))
	for i, b := range bs {
		if b {
			s[i] = 'T'
		} else {
			s[i] = 'F'
		}
	}
	return string(s)
}

func TestReusesCounterAcrossShorterRun(t *testing.T) {
	e := New()
	// A run drawing 2 flips followed by one drawing only 1 flip must not
	// panic or misbehave — the vector position simply resets each lap.
	e.NextCoinFlip()
	e.NextCoinFlip()
	e.Lap()
	// Lap 1 drew [false, false]; incrementing it flips the rightmost
	// position, giving [false, true]. A lap that only draws one flip
	// this time sees the leftmost position, unchanged.
	if got := e.NextCoinFlip(); got != false {
		t.Fatalf("expected false, got %v", got)
	}
	e.Lap()
}
