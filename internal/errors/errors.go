package errors

import (
	"fmt"

	"slate/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic.
type ErrorLevel string

const (
	Error ErrorLevel = "error"
	Note  ErrorLevel = "note"
	Help  ErrorLevel = "help"
)

// CompilerError is a structured diagnostic. Every error is fatal for the
// current compile; the pipeline accumulates them only so the driver can show
// more than one.
type CompilerError struct {
	Level       ErrorLevel
	Code        string
	Message     string
	Position    ast.Position
	Length      int
	Suggestions []string
	Notes       []string
	HelpText    string
}

// Summary renders the one-line "file:line:col: message" form used by
// non-interactive consumers and tests.
func (e CompilerError) Summary() string {
	return fmt.Sprintf("%s:%d:%d: %s",
		e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// Builder provides a fluent way to assemble diagnostics.
type Builder struct {
	err CompilerError
}

func New(code, message string, pos ast.Position) *Builder {
	return &Builder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

func (b *Builder) WithLength(length int) *Builder {
	b.err.Length = length
	return b
}

func (b *Builder) WithSuggestion(message string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, message)
	return b
}

func (b *Builder) WithNote(note string) *Builder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *Builder) WithHelp(help string) *Builder {
	b.err.HelpText = help
	return b
}

func (b *Builder) Build() CompilerError {
	return b.err
}
