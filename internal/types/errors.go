package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Sentinels for each failure kind. Match with errors.Is.
var (
	ErrSourceNotFound        = errors.New("source file not found")
	ErrSourceSchema          = errors.New("source schema error")
	ErrMalformedPercent      = errors.New("malformed percent value")
	ErrDestinationUnwritable = errors.New("destination directory is not writable")
	ErrWriteFailure          = errors.New("write failure")
	ErrInvalidRequest        = errors.New("invalid request")
)

// Error carries the context of a conversion failure.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error

	// Path is the file or directory involved.
	Path string

	// Row is the 1-based source row, when the error concerns a row.
	Row int

	// Columns lists missing column names for schema errors.
	Columns []string

	// Value is the offending raw value.
	Value string

	// Part is the 1-based part index for split writes, 0 for a single file.
	Part int

	// Err is the underlying cause, if any.
	Err error
}

// Error returns a single descriptive line suitable for a message box.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("conversion error")
	}

	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": missing column(s) %s", strings.Join(e.Columns, ", "))
	}
	if e.Value != "" || errors.Is(e.Kind, ErrMalformedPercent) {
		fmt.Fprintf(&b, ": value %q", e.Value)
	}
	if e.Part > 0 {
		fmt.Fprintf(&b, ": part %d", e.Part)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}
