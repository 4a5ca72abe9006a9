package frontend

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/skaji/quicklint-daemon/internal/config"
)

type initOptions struct {
	SchemaPaths []string `json:"schemaPaths"`
}

func readInitializationOptions(options any) []string {
	if options == nil {
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	var decoded initOptions
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil
	}
	return decoded.SchemaPaths
}

func hasFileScheme(value string) bool {
	return strings.HasPrefix(value, "file://")
}

func uriToPath(uri protocol.DocumentUri) string {
	parsed, err := url.Parse(string(uri))
	if err != nil || parsed.Scheme != "file" {
		return ""
	}
	path, err := url.PathUnescape(parsed.Path)
	if err != nil {
		return ""
	}
	return filepath.FromSlash(path)
}

func pathToURI(path string) protocol.DocumentUri {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return protocol.DocumentUri(path)
	}
	absPath = filepath.ToSlash(absPath)
	u := url.URL{Scheme: "file", Path: absPath}
	return protocol.DocumentUri(u.String())
}

func expandSchemaPattern(root, pattern string) []string {
	if pattern == "" {
		return nil
	}
	expanded := pattern
	if !filepath.IsAbs(expanded) && root != "" {
		expanded = filepath.Join(root, expanded)
	}
	if hasGlobMeta(expanded) {
		matches, err := filepath.Glob(expanded)
		if err != nil {
			return nil
		}
		return matches
	}
	return []string{expanded}
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

func isGraphQLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".graphql" || ext == ".graphqls"
}

func isSchemaPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".graphqls" {
		return true
	}
	if ext != ".graphql" {
		return false
	}
	base := strings.ToLower(filepath.Base(path))
	return strings.Contains(base, "schema")
}

// isSchemaURI reports whether uri should be routed to the workspace schema
// store instead of a DocumentLinter. Schema routing only makes sense under
// the graphql engine; under the script engine a file merely named like a
// schema is an ordinary document.
func isSchemaURI(engineKind config.EngineKind, uri protocol.DocumentUri) bool {
	if engineKind != config.EngineGraphQL {
		return false
	}
	path := uriToPath(uri)
	if path == "" {
		return false
	}
	return isSchemaPath(path)
}
