package frontend

import (
	"fmt"
	"log/slog"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/skaji/quicklint-daemon/internal/lint"
)

const maxChangePreview = 40

func logChangeSummary(uri protocol.DocumentUri, version protocol.Integer, changes []lint.Change, length int) {
	if len(changes) == 0 {
		return
	}

	summary := make([]string, 0, len(changes))
	for _, change := range changes {
		if !change.HasRange {
			summary = append(summary, fmt.Sprintf("full(len=%d)", len(change.Text)))
			continue
		}
		start := formatPosition(change.Range.Start)
		end := formatPosition(change.Range.End)
		preview := truncatePreview(change.Text, maxChangePreview)
		summary = append(summary, fmt.Sprintf("range(%s-%s,len=%d,%q)", start, end, len(change.Text), preview))
	}

	slog.Debug("didChange", "uri", uri, "version", version, "length", length, "changes", strings.Join(summary, "; "))
}

func formatPosition(pos lint.Position) string {
	return fmt.Sprintf("%d:%d", pos.Line+1, pos.Character+1)
}

func truncatePreview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
