package frontend

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/skaji/quicklint-daemon/internal/config"
	"github.com/skaji/quicklint-daemon/internal/engine"
	"github.com/skaji/quicklint-daemon/internal/engine/graphqlengine"
	"github.com/skaji/quicklint-daemon/internal/engine/scriptengine"
	"github.com/skaji/quicklint-daemon/internal/orchestrator"
	"github.com/skaji/quicklint-daemon/internal/process"
)

var (
	ServerName = "quicklint-daemon"
	Version    = "0.1.0"
)

// Server is the LSP transport: it turns didOpen/didChange/didClose into
// DocumentLinter calls and publishes whatever diagnostics those calls
// settle on. It has no hover, completion, definition, or rename support —
// only visibility, edit, and dispose operations, not an editor-navigation
// surface.
type Server struct {
	handler protocol.Handler
	state   *state

	// notifyMu serializes access to ctx, which is only ever set by request
	// handlers on the glsp dispatch goroutine but read from background
	// DocumentLinter drain-loop goroutines when they publish diagnostics.
	notifyMu sync.Mutex
	ctx      *glsp.Context

	graphqlSchema atomic.Pointer[ast.Schema]
}

// New constructs a Server, building a process.Manager whose engine.Factory
// matches cfg.Engine and whose crash ledger lives at cfg.CrashLogPath.
func New(cfg config.Config) (*Server, error) {
	var crashLog *process.CrashLog
	if cfg.CrashLogPath != "" {
		log, err := process.OpenCrashLog(cfg.CrashLogPath)
		if err != nil {
			return nil, err
		}
		crashLog = log
	}

	s := &Server{}

	var factory engine.Factory
	switch cfg.Engine {
	case config.EngineGraphQL:
		factory = func() engine.Engine { return graphqlengine.New(s.graphqlSchema.Load()) }
	default:
		factory = func() engine.Engine {
			return scriptengine.New(scriptengine.Options{AllowRedeclaration: cfg.AllowRedeclaration})
		}
	}

	manager := process.NewManager(factory, nil, crashLog)
	s.state = newState(cfg, manager)

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,
	}
	return s, nil
}

func (s *Server) setGraphQLSchema(schema *ast.Schema) {
	s.graphqlSchema.Store(schema)
}

// RunStdio serves the LSP protocol over stdin/stdout until the client
// disconnects.
func (s *Server) RunStdio() error {
	slog.Info("starting quicklint-daemon", "name", ServerName, "version", Version, "engine", s.state.cfg.Engine)
	srv := glspserver.NewServer(&s.handler, ServerName, false)
	return srv.RunStdio()
}

func (s *Server) rememberContext(context *glsp.Context) {
	s.notifyMu.Lock()
	s.ctx = context
	s.notifyMu.Unlock()
}

// publishDiagnostics is safe to call from any goroutine, including a
// DocumentLinter's background drain loop, since glsp.Context wraps a
// long-lived connection rather than a single request.
func (s *Server) publishDiagnostics(uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	s.notifyMu.Lock()
	ctx := s.ctx
	s.notifyMu.Unlock()
	if ctx == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *Server) initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.rememberContext(context)
	slog.Debug("initialize request received")

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}

	rootPath := ""
	if params.RootURI != nil {
		rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		rootPath = *params.RootPath
	}
	schemaPaths := readInitializationOptions(params.InitializationOptions)
	if len(schemaPaths) == 0 {
		schemaPaths = s.state.cfg.SchemaPaths
	}

	s.state.mu.Lock()
	s.state.rootPath = rootPath
	s.state.schemaPaths = schemaPaths
	s.state.mu.Unlock()
	slog.Debug("initialize configuration", "rootPath", rootPath, "schemaPaths", schemaPaths, "engine", s.state.cfg.Engine)

	if s.state.cfg.Engine == config.EngineGraphQL {
		s.reloadWorkspaceSchema()
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &Version,
		},
	}, nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	slog.Debug("shutdown request received")
	protocol.SetTraceValue(protocol.TraceValueOff)

	s.state.mu.Lock()
	docs := make([]*openDocument, 0, len(s.state.docs))
	for _, open := range s.state.docs {
		docs = append(docs, open)
	}
	s.state.docs = make(map[protocol.DocumentUri]*openDocument)
	s.state.mu.Unlock()

	for _, open := range docs {
		_ = open.linter.DisposeAsync()
	}
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	slog.Debug("setTrace request received", "value", params.Value)
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.rememberContext(context)
	uri := params.TextDocument.URI
	slog.Debug("didOpen", "uri", uri, "version", params.TextDocument.Version)

	if isSchemaURI(s.state.cfg.Engine, uri) {
		s.openSchemaDocument(uri, params.TextDocument.Text)
		return nil
	}

	doc := newEditorDocument(uri, params.TextDocument.Text, s.publishDiagnostics)
	linter := orchestrator.New(doc, s.state.manager, orchestrator.WithMaxRecoveries(s.state.cfg.MaxRecoveries))

	s.state.mu.Lock()
	s.state.docs[uri] = &openDocument{doc: doc, linter: linter}
	s.state.mu.Unlock()

	if err := linter.EditorChangedVisibilityAsync(); err != nil {
		slog.Warn("editorChangedVisibilityAsync failed on open", "uri", uri, "error", err)
	}
	return nil
}

func (s *Server) didChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.rememberContext(context)
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		return nil
	}

	if isSchemaURI(s.state.cfg.Engine, uri) {
		s.changeSchemaDocument(uri, params.ContentChanges)
		return nil
	}

	s.state.mu.Lock()
	open, ok := s.state.docs[uri]
	s.state.mu.Unlock()
	if !ok {
		return nil
	}

	newText, lintChanges, ok := applyContentChanges(open.doc.Text(), params.ContentChanges)
	if !ok {
		return nil
	}
	open.doc.setText(newText)
	logChangeSummary(uri, params.TextDocument.Version, lintChanges, len(newText))

	if err := open.linter.TextChangedAsync(lintChanges); err != nil {
		slog.Warn("textChangedAsync failed", "uri", uri, "error", err)
	}
	return nil
}

func (s *Server) didClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.rememberContext(context)
	uri := params.TextDocument.URI
	slog.Debug("didClose", "uri", uri)

	if isSchemaURI(s.state.cfg.Engine, uri) {
		s.closeSchemaDocument(uri)
		return nil
	}

	s.state.mu.Lock()
	open, ok := s.state.docs[uri]
	delete(s.state.docs, uri)
	s.state.mu.Unlock()
	if !ok {
		return nil
	}
	if err := open.linter.DisposeAsync(); err != nil {
		slog.Warn("disposeAsync failed", "uri", uri, "error", err)
	}
	return nil
}
