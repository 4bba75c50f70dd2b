// Package perr defines the single error shape shared by every parsing pass:
// the line scanner, the block grouper, and the statement parser.
package perr

import (
	"fmt"
	"os"
	"strings"
)

// Kind classifies a ParseError without needing a distinct Go type per kind.
type Kind int

const (
	// LexicalError covers tab characters and unterminated strings/brackets.
	LexicalError Kind = iota
	// IndentationError covers block-grouping depth mismatches.
	IndentationError
	// SyntaxError covers unexpected tokens, missing required tokens, and arity errors.
	SyntaxError
	// IoError covers failures reading the source file.
	IoError
)

// ParseError is the shape every fatal and soft error takes across all three
// parsing passes. Fatal errors are returned as a Go error (ParseError
// satisfies the error interface); soft errors are stringified with Error()
// and collected into the second return value of ParseBlock.
type ParseError struct {
	Kind     Kind
	Filename string
	Line     int
	Message  string
	Text     string // offending line text, when available
	Pos      int    // column position within Text, when available
	hasText  bool
}

// New creates a ParseError with no line-text context.
func New(kind Kind, filename string, line int, message string) *ParseError {
	return &ParseError{Kind: kind, Filename: filename, Line: line, Message: message}
}

// NewWithContext creates a ParseError carrying the offending line and column.
func NewWithContext(kind Kind, filename string, line int, message, text string, pos int) *ParseError {
	return &ParseError{Kind: kind, Filename: filename, Line: line, Message: message, Text: text, Pos: pos, hasText: true}
}

// Error renders "On line L of F: MSG", the format spec §7 pins down.
func (e *ParseError) Error() string {
	return fmt.Sprintf("On line %d of %s: %s", e.Line, e.Filename, e.Message)
}

// Verbose appends the offending line and a caret when available. This is
// advisory, per spec §7 — callers that want the plain format use Error().
func (e *ParseError) Verbose() string {
	if !e.hasText {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\n")
	b.WriteString(e.Text)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", e.Pos))
	b.WriteString("^")
	return b.String()
}

// ElideFilename rewrites a leading path prefix according to RENPY_PATH_ELIDE,
// formatted "A:B" — any leading A in filename is rewritten to B. Absent or
// malformed values are ignored.
func ElideFilename(filename string) string {
	spec := os.Getenv("RENPY_PATH_ELIDE")
	if spec == "" {
		return filename
	}
	from, to, ok := strings.Cut(spec, ":")
	if !ok {
		return filename
	}
	if strings.HasPrefix(filename, from) {
		return to + strings.TrimPrefix(filename, from)
	}
	return filename
}
