package frontend

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/skaji/quicklint-daemon/internal/lint"
)

// editorDocument is the orchestrator.Document for one open editor buffer.
// Text is mutated synchronously as didChange notifications arrive, on the
// glsp dispatch goroutine; SetDiagnostics/RemoveDiagnostics are called from
// a DocumentLinter's background drain loop and publish over the wire
// through notify, which is safe to call from any goroutine.
type editorDocument struct {
	uri    protocol.DocumentUri
	notify func(uri protocol.DocumentUri, diagnostics []protocol.Diagnostic)

	mu   sync.Mutex
	text string
}

func newEditorDocument(uri protocol.DocumentUri, text string, notify func(protocol.DocumentUri, []protocol.Diagnostic)) *editorDocument {
	return &editorDocument{uri: uri, text: text, notify: notify}
}

func (d *editorDocument) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *editorDocument) setText(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

func (d *editorDocument) SetDiagnostics(diagnostics []lint.Diagnostic) {
	d.notify(d.uri, convertDiagnostics(diagnostics))
}

func (d *editorDocument) RemoveDiagnostics() {
	d.notify(d.uri, nil)
}
