package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"simple/interpreter-go/pkg/ast"
	"simple/interpreter-go/pkg/driver"
	"simple/interpreter-go/pkg/runtime"
)

type RuntimeDiagnosticNote struct {
	Message  string
	Location driver.DiagnosticLocation
}

type RuntimeDiagnostic struct {
	Severity driver.DiagnosticSeverity
	Kind     runtime.ErrorKind
	Message  string
	Location driver.DiagnosticLocation
	Notes    []RuntimeDiagnosticNote
}

// BuildRuntimeDiagnostic locates err inside the document at path. current is the node the
// machine was reducing when err was raised; it becomes a note when it sits elsewhere.
func BuildRuntimeDiagnostic(err error, path string, current ast.Node) RuntimeDiagnostic {
	diag := RuntimeDiagnostic{
		Severity: driver.SeverityError,
		Message:  runtimeMessageFromError(err),
		Location: driver.DiagnosticLocation{Path: path},
	}
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		diag.Kind = rtErr.Kind
		if rtErr.Node != nil {
			diag.Location = driver.LocationOf(path, rtErr.Node)
		}
	}
	if current != nil {
		noteLocation := driver.LocationOf(path, current)
		if noteLocation.Line > 0 && !runtimeLocationsEqual(noteLocation, diag.Location) {
			diag.Notes = append(diag.Notes, RuntimeDiagnosticNote{
				Message:  "while reducing " + ast.Format(current),
				Location: noteLocation,
			})
		}
	}
	return diag
}

func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	if strings.HasPrefix(message, "runtime:") {
		message = strings.TrimSpace(strings.TrimPrefix(message, "runtime:"))
	}
	location := driver.FormatLocation(diag.Location)
	prefix := "runtime: "
	if diag.Severity == driver.SeverityWarning {
		prefix = "warning: runtime: "
	}
	var b strings.Builder
	if location != "" {
		fmt.Fprintf(&b, "%s%s %s", prefix, location, message)
	} else {
		fmt.Fprintf(&b, "%s%s", prefix, message)
	}
	for _, note := range diag.Notes {
		noteLoc := driver.FormatLocation(note.Location)
		if noteLoc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", noteLoc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

func runtimeMessageFromError(err error) string {
	if err == nil {
		return ""
	}
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		return rtErr.Error()
	}
	return err.Error()
}

func runtimeLocationsEqual(left, right driver.DiagnosticLocation) bool {
	if left.IsZero() || right.IsZero() {
		return false
	}
	return left.Path == right.Path && left.Line == right.Line && left.Column == right.Column
}
