package frontend

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/skaji/quicklint-daemon/internal/lint"
)

// applyContentChanges keeps editorDocument's text in sync with every edit
// so a crash recovery can re-materialize the engine document from scratch,
// and produces the corresponding []lint.Change list to hand to
// TextChangedAsync.
func applyContentChanges(current string, changes []any) (string, []lint.Change, bool) {
	lintChanges := make([]lint.Change, 0, len(changes))
	for _, change := range changes {
		switch value := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			current = value.Text
			lintChanges = append(lintChanges, lint.Change{Text: value.Text})
		case protocol.TextDocumentContentChangeEvent:
			if value.Range == nil {
				current = value.Text
				lintChanges = append(lintChanges, lint.Change{Text: value.Text})
				continue
			}
			current = applyRangeChange(current, *value.Range, value.Text)
			lintChanges = append(lintChanges, lint.Change{
				HasRange: true,
				Range:    convertProtocolRange(*value.Range),
				Text:     value.Text,
			})
		default:
			return current, nil, false
		}
	}
	return current, lintChanges, true
}

func applyRangeChange(text string, r protocol.Range, replacement string) string {
	start := r.Start.IndexIn(text)
	end := r.End.IndexIn(text)
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	return text[:start] + replacement + text[end:]
}

func convertProtocolRange(r protocol.Range) lint.Range {
	return lint.Range{
		Start: lint.Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   lint.Position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}
