// Package frontend wires the glsp Language Server Protocol transport to one
// DocumentLinter per open document, driving a crash-resilient orchestrator
// instead of a linting engine directly.
package frontend

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/skaji/quicklint-daemon/internal/config"
	"github.com/skaji/quicklint-daemon/internal/orchestrator"
	"github.com/skaji/quicklint-daemon/internal/process"
)

// state holds everything the Server needs across requests. Unlike the
// teacher's State, document text is not stored centrally: each open
// document owns its own text via an *editorDocument, guarded by that
// document's own mutex, so its DocumentLinter can read Document.Text()
// without taking this server-wide lock.
type state struct {
	mu sync.Mutex

	cfg     config.Config
	manager *process.Manager

	rootPath    string
	schemaPaths []string

	docs map[protocol.DocumentUri]*openDocument

	// schemaDocs holds the editor's unsaved text for open schema files,
	// which are validated as a workspace, not as individual DocumentLinters.
	schemaDocs map[protocol.DocumentUri]string

	// schemaDiagnostics and schemaURIs track the graphql-engine workspace
	// schema, used only when Engine is "graphql". They are irrelevant, and
	// left empty, under the script engine.
	schemaDiagnostics map[protocol.DocumentUri][]protocol.Diagnostic
	schemaURIs        map[protocol.DocumentUri]struct{}
}

func newState(cfg config.Config, manager *process.Manager) *state {
	return &state{
		cfg:               cfg,
		manager:           manager,
		docs:              make(map[protocol.DocumentUri]*openDocument),
		schemaDocs:        make(map[protocol.DocumentUri]string),
		schemaDiagnostics: make(map[protocol.DocumentUri][]protocol.Diagnostic),
		schemaURIs:        make(map[protocol.DocumentUri]struct{}),
	}
}

// openDocument bundles an editor-owned document with the DocumentLinter
// serializing operations against it.
type openDocument struct {
	doc    *editorDocument
	linter *orchestrator.DocumentLinter
}
