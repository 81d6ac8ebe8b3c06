package interp

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks shell features that are recognized but deliberately
// not implemented: here-documents, read-write redirection, arithmetic and
// subshell substitution, multi-field $@/$* expansion, and the POSIX
// parameter operators beyond plain value and length. Callers can tell it
// apart from user errors with errors.Is.
var ErrUnsupported = errors.New("not supported")

// SyntaxError reports malformed input: bad ${...} substitutions, unmatched
// backticks, misplaced assignments and non-numeric fd references. The
// interpreter above this layer decides whether to abort or move on to the
// next command.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

func syntaxErrf(format string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}
