package process

import (
	"errors"
	"testing"

	"github.com/skaji/quicklint-daemon/internal/engine"
	"github.com/skaji/quicklint-daemon/internal/engine/scriptengine"
	"github.com/skaji/quicklint-daemon/internal/lint"
	"github.com/skaji/quicklint-daemon/internal/schedule"
)

var errFaultInjected = errors.New("process: injected fault")

type faultOutcome int

const (
	outcomeUnknown faultOutcome = iota
	outcomeEmpty
	outcomeOpenOnly
	outcomeFullyRecovered
)

func classifyFaultOutcome(diags []lint.Diagnostic) faultOutcome {
	switch len(diags) {
	case 0:
		return outcomeEmpty
	case 1:
		if diags[0].Message == "redeclaration of variable: x" {
			return outcomeOpenOnly
		}
	case 2:
		if diags[0].Message == "redeclaration of variable: x" && diags[1].Message == "redeclaration of variable: y" {
			return outcomeFullyRecovered
		}
	}
	return outcomeUnknown
}

// runOpenAndEdit drives one straight-line attempt at opening openText and
// editing it to editText: create, lint, apply, lint again, with no retry.
// A crash at any step ends the attempt immediately, leaving diagnostics at
// whatever the last successful lint produced.
func runOpenAndEdit(m *Manager, openText, editText string) []lint.Diagnostic {
	worker := m.AcquireWorker()
	handle, err := worker.CreateDocument(openText)
	if err != nil {
		m.ReportCrashed(worker)
		return nil
	}
	diags, err := worker.Lint(handle)
	if err != nil {
		m.ReportCrashed(worker)
		return nil
	}

	if err := worker.ApplyChange(handle, lint.Change{Text: editText, HasRange: false}); err != nil {
		m.ReportCrashed(worker)
		return diags
	}
	edited, err := worker.Lint(handle)
	if err != nil {
		m.ReportCrashed(worker)
		return diags
	}
	return edited
}

// TestExhaustiveFaultInjectionOnOpenAndEdit drives every fault sequence
// schedule.Enumerator can produce through one open ("let x;let x;\n") and
// one edit to "let x;let x;\nlet y;let y;", the open+edit fault-injection
// scenario. Each straight-line attempt's outcome must fall into one of the
// three sets that scenario allows: nothing observed (crashed on open),
// only the open's redeclaration (crashed before the edit linted), or both
// redeclarations (fully recovered).
func TestExhaustiveFaultInjectionOnOpenAndEdit(t *testing.T) {
	const openText = "let x;let x;\n"
	const editText = "let x;let x;\nlet y;let y;"

	enumerator := schedule.New()
	injector := InjectorFunc(func(string, string) error {
		if enumerator.NextCoinFlip() {
			return errFaultInjected
		}
		return nil
	})
	m := NewManager(func() engine.Engine { return scriptengine.New(scriptengine.Options{}) }, injector, nil)

	var seenEmpty, seenOpenOnly, seenFullyRecovered bool
	laps := 0
	for !enumerator.IsDone() {
		laps++
		if laps > 64 {
			t.Fatalf("enumeration did not converge within 64 laps")
		}
		diags := runOpenAndEdit(m, openText, editText)
		switch classifyFaultOutcome(diags) {
		case outcomeEmpty:
			seenEmpty = true
		case outcomeOpenOnly:
			seenOpenOnly = true
		case outcomeFullyRecovered:
			seenFullyRecovered = true
		default:
			t.Fatalf("lap %d: diagnostics matched none of the three allowed outcomes: %+v", laps, diags)
		}
		enumerator.Lap()
	}

	if !seenEmpty || !seenOpenOnly || !seenFullyRecovered {
		t.Fatalf("expected the enumeration to cover all three outcomes over %d laps; empty=%v openOnly=%v recovered=%v",
			laps, seenEmpty, seenOpenOnly, seenFullyRecovered)
	}
}
