// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// Kind classifies a CompileError by the stage that raised it.
type Kind string

const (
	SyntaxError   Kind = "SyntaxError"
	AnalysisError Kind = "AnalysisError"
	TypeError     Kind = "TypeError"
	EmitError     Kind = "EmitError"
	ToolError     Kind = "ToolError"
	ReaderError   Kind = "ReaderError"
)

// SourceLocation pinpoints a position in source text.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// CompileError carries a message plus enough location context to render
// a caret under the offending column.
type CompileError struct {
	Kind     Kind
	Message  string
	Location SourceLocation
	Source   string
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	if e.Location.Line > 0 {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.Location.File, e.Location.Line, e.Location.Column))
		if e.Source != "" {
			prefix := fmt.Sprintf("  %d | ", e.Location.Line)
			sb.WriteString(fmt.Sprintf("\n%s%s\n", prefix, e.Source))
			sb.WriteString(strings.Repeat(" ", len(prefix)))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^\n")
		}
	}
	return sb.String()
}

func NewSyntaxError(message, file string, line, column int) *CompileError {
	return &CompileError{Kind: SyntaxError, Message: message, Location: SourceLocation{File: file, Line: line, Column: column}}
}

func NewAnalysisError(message, file string, line, column int) *CompileError {
	return &CompileError{Kind: AnalysisError, Message: message, Location: SourceLocation{File: file, Line: line, Column: column}}
}

func NewEmitError(message string) *CompileError {
	return &CompileError{Kind: EmitError, Message: message}
}

func NewToolError(message string) *CompileError {
	return &CompileError{Kind: ToolError, Message: message}
}

func NewReaderError(message string) *CompileError {
	return &CompileError{Kind: ReaderError, Message: message}
}

func (e *CompileError) WithSource(source string) *CompileError {
	e.Source = source
	return e
}

// Recover turns a panicked *CompileError into a returned error. Any other
// panic value is re-raised — only compiler-recognised failures are
// converted into ordinary errors at package boundaries.
func Recover(err *error) {
	if r := recover(); r != nil {
		if ce, ok := r.(*CompileError); ok {
			*err = ce
			return
		}
		panic(r)
	}
}
