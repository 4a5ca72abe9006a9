package frontend

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/skaji/quicklint-daemon/internal/config"
)

// reloadWorkspaceSchema handles the graphql engine's workspace-level schema:
// when configured, the workspace's schema files are parsed independently of
// any single document's DocumentLinter and stored for the engine.Factory,
// which reads the current schema each time it builds a graphqlengine worker;
// workers created earlier keep the schema they were built with. It is a
// no-op under the script engine.
func (s *Server) reloadWorkspaceSchema() {
	if s.state.cfg.Engine != config.EngineGraphQL {
		return
	}

	sources, uris := s.collectSchemaSources()
	diagnosticsByURI := make(map[protocol.DocumentUri][]protocol.Diagnostic)
	var schema *ast.Schema
	if len(sources) > 0 {
		loaded, err := gqlparser.LoadSchema(sources...)
		schema = loaded
		if err != nil {
			diagnosticsByURI = gqlErrorDiagnosticsByFile(err, uris)
		}
	}

	s.state.mu.Lock()
	previousURIs := s.state.schemaURIs
	s.state.schemaDiagnostics = diagnosticsByURI
	s.state.schemaURIs = uris
	s.state.mu.Unlock()

	s.setGraphQLSchema(schema)

	for uri := range previousURIs {
		if _, stillSchema := uris[uri]; !stillSchema {
			s.publishDiagnostics(uri, nil)
		}
	}
	for uri := range uris {
		s.publishDiagnostics(uri, diagnosticsByURI[uri])
	}
}

func (s *Server) collectSchemaSources() ([]*ast.Source, map[protocol.DocumentUri]struct{}) {
	s.state.mu.Lock()
	root := s.state.rootPath
	schemaPaths := append([]string(nil), s.state.schemaPaths...)
	s.state.mu.Unlock()

	if len(schemaPaths) > 0 {
		return s.collectSchemaSourcesFromPaths(root, schemaPaths)
	}
	if root == "" {
		return nil, map[protocol.DocumentUri]struct{}{}
	}

	uris := make(map[protocol.DocumentUri]struct{})
	var sources []*ast.Source
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSchemaPath(path) {
			return nil
		}
		s.addSchemaSource(path, uris, &sources)
		return nil
	})
	return sources, uris
}

func (s *Server) collectSchemaSourcesFromPaths(root string, schemaPaths []string) ([]*ast.Source, map[protocol.DocumentUri]struct{}) {
	uris := make(map[protocol.DocumentUri]struct{})
	visited := make(map[string]struct{})
	var sources []*ast.Source

	for _, pattern := range schemaPaths {
		for _, path := range expandSchemaPattern(root, pattern) {
			if path == "" {
				continue
			}
			if _, ok := visited[path]; ok {
				continue
			}
			visited[path] = struct{}{}

			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.IsDir() {
				sources = append(sources, s.collectSchemaSourcesFromDir(path, uris)...)
				continue
			}
			if !isGraphQLFile(path) {
				continue
			}
			s.addSchemaSource(path, uris, &sources)
		}
	}
	return sources, uris
}

func (s *Server) collectSchemaSourcesFromDir(root string, uris map[protocol.DocumentUri]struct{}) []*ast.Source {
	var sources []*ast.Source
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isGraphQLFile(path) {
			return nil
		}
		s.addSchemaSource(path, uris, &sources)
		return nil
	})
	return sources
}

func (s *Server) addSchemaSource(path string, uris map[protocol.DocumentUri]struct{}, sources *[]*ast.Source) {
	uri := pathToURI(path)
	if _, ok := uris[uri]; ok {
		return
	}
	content, ok := s.readFileOrOpenDocument(uri, path)
	if !ok {
		return
	}
	uris[uri] = struct{}{}
	*sources = append(*sources, &ast.Source{Name: string(uri), Input: content})
}

func (s *Server) readFileOrOpenDocument(uri protocol.DocumentUri, path string) (string, bool) {
	s.state.mu.Lock()
	if text, ok := s.state.schemaDocs[uri]; ok {
		s.state.mu.Unlock()
		return text, true
	}
	if open, ok := s.state.docs[uri]; ok {
		text := open.doc.Text()
		s.state.mu.Unlock()
		return text, true
	}
	s.state.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// openSchemaDocument records an editor-owned schema file's text and
// reloads the workspace schema against it.
func (s *Server) openSchemaDocument(uri protocol.DocumentUri, text string) {
	s.state.mu.Lock()
	s.state.schemaDocs[uri] = text
	s.state.mu.Unlock()
	s.reloadWorkspaceSchema()
}

func (s *Server) changeSchemaDocument(uri protocol.DocumentUri, changes []any) {
	s.state.mu.Lock()
	current := s.state.schemaDocs[uri]
	s.state.mu.Unlock()

	newText, _, ok := applyContentChanges(current, changes)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.schemaDocs[uri] = newText
	s.state.mu.Unlock()
	s.reloadWorkspaceSchema()
}

func (s *Server) closeSchemaDocument(uri protocol.DocumentUri) {
	s.state.mu.Lock()
	delete(s.state.schemaDocs, uri)
	delete(s.state.schemaDiagnostics, uri)
	s.state.mu.Unlock()
	s.reloadWorkspaceSchema()
}
