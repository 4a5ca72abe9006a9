package frontend

import (
	"errors"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/skaji/quicklint-daemon/internal/lint"
)

var serverSource = ServerName

func convertDiagnostics(diagnostics []lint.Diagnostic) []protocol.Diagnostic {
	if len(diagnostics) == 0 {
		return nil
	}
	converted := make([]protocol.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		converted = append(converted, convertDiagnostic(d))
	}
	return converted
}

func convertDiagnostic(d lint.Diagnostic) protocol.Diagnostic {
	severity := convertSeverity(d.Severity)
	return protocol.Diagnostic{
		Range:    convertRange(d.Range),
		Severity: &severity,
		Source:   &serverSource,
		Message:  d.Message,
	}
}

func convertSeverity(s lint.Severity) protocol.DiagnosticSeverity {
	if s == lint.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func convertRange(r lint.Range) protocol.Range {
	return protocol.Range{
		Start: convertPosition(r.Start),
		End:   convertPosition(r.End),
	}
}

func convertPosition(p lint.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(p.Character),
	}
}

// gqlErrorDiagnosticsByFile turns a gqlparser error into per-file protocol
// diagnostics. Workspace schema files are validated independently of any
// open document's DocumentLinter, so these are built directly rather than
// through lint.Diagnostic.
func gqlErrorDiagnosticsByFile(err error, knownURIs map[protocol.DocumentUri]struct{}) map[protocol.DocumentUri][]protocol.Diagnostic {
	byURI := make(map[protocol.DocumentUri][]protocol.Diagnostic)
	if err == nil {
		return byURI
	}

	var list gqlerror.List
	if errors.As(err, &list) {
		addDiagnosticsByFile(byURI, list, knownURIs)
		return byURI
	}
	var single *gqlerror.Error
	if errors.As(err, &single) {
		addDiagnosticsByFile(byURI, gqlerror.List{single}, knownURIs)
		return byURI
	}
	addDiagnosticsByFile(byURI, gqlerror.List{gqlerror.Wrap(err)}, knownURIs)
	return byURI
}

func addDiagnosticsByFile(byURI map[protocol.DocumentUri][]protocol.Diagnostic, list gqlerror.List, knownURIs map[protocol.DocumentUri]struct{}) {
	for _, gqlErr := range list {
		uri := gqlErrorURI(gqlErr)
		if uri == "" {
			uri = firstKnownURI(knownURIs)
		}
		if uri == "" {
			continue
		}
		byURI[uri] = append(byURI[uri], gqlErrorToProtocolDiagnostic(gqlErr))
	}
}

func gqlErrorURI(err *gqlerror.Error) protocol.DocumentUri {
	if err == nil || err.Extensions == nil {
		return ""
	}
	if file, ok := err.Extensions["file"].(string); ok && file != "" {
		if hasFileScheme(file) {
			return protocol.DocumentUri(file)
		}
		return pathToURI(file)
	}
	return ""
}

func firstKnownURI(knownURIs map[protocol.DocumentUri]struct{}) protocol.DocumentUri {
	for uri := range knownURIs {
		return uri
	}
	return ""
}

func gqlErrorToProtocolDiagnostic(err *gqlerror.Error) protocol.Diagnostic {
	startLine, startChar := 0, 0
	if len(err.Locations) > 0 {
		startLine = err.Locations[0].Line - 1
		startChar = err.Locations[0].Column - 1
	}
	if startLine < 0 {
		startLine = 0
	}
	if startChar < 0 {
		startChar = 0
	}

	severity := protocol.DiagnosticSeverityError
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(startLine), Character: protocol.UInteger(startChar)},
			End:   protocol.Position{Line: protocol.UInteger(startLine), Character: protocol.UInteger(startChar + 1)},
		},
		Severity: &severity,
		Message:  err.Message,
		Source:   &serverSource,
	}
}
