package driver

import (
	"fmt"
	"strings"

	"simple/interpreter-go/pkg/ast"
)

// DiagnosticSeverity captures diagnostic levels.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
)

// DiagnosticLocation references a source span for diagnostics.
type DiagnosticLocation struct {
	Path      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// IsZero reports whether the location carries no information.
func (l DiagnosticLocation) IsZero() bool {
	return l == DiagnosticLocation{}
}

// LocationOf maps a node's span in the document at path to a location.
func LocationOf(path string, node ast.Node) DiagnosticLocation {
	if node == nil {
		return DiagnosticLocation{Path: path}
	}
	span := node.Span()
	return DiagnosticLocation{
		Path:      path,
		Line:      span.Start.Line,
		Column:    span.Start.Column,
		EndLine:   span.End.Line,
		EndColumn: span.End.Column,
	}
}

// DocumentDiagnostic represents a structured problem found while decoding a program document.
type DocumentDiagnostic struct {
	Severity DiagnosticSeverity
	Message  string
	Location DiagnosticLocation
}

// DocumentDiagnosticError wraps a diagnostic for error handling.
type DocumentDiagnosticError struct {
	Diagnostic DocumentDiagnostic
}

func (e *DocumentDiagnosticError) Error() string {
	location := FormatLocation(e.Diagnostic.Location)
	if location == "" {
		return e.Diagnostic.Message
	}
	return location + ": " + e.Diagnostic.Message
}

// DescribeDocumentDiagnostic formats a document diagnostic for CLI output.
func DescribeDocumentDiagnostic(diag DocumentDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	if strings.HasPrefix(message, "document:") {
		message = strings.TrimSpace(strings.TrimPrefix(message, "document:"))
	}
	location := FormatLocation(diag.Location)
	prefix := "document: "
	if diag.Severity == SeverityWarning {
		prefix = "warning: document: "
	}
	if location != "" {
		return fmt.Sprintf("%s%s %s", prefix, location, message)
	}
	return fmt.Sprintf("%s%s", prefix, message)
}

// FormatLocation renders `path:line:col`, degrading gracefully when parts are missing.
func FormatLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
