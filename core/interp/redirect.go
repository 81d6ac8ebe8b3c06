package interp

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/spf13/afero"
)

// RedirOp identifies a redirection operator.
type RedirOp int

const (
	RedirGreat     RedirOp = iota // >
	RedirClobber                  // >|
	RedirDGreat                   // >>
	RedirLess                     // <
	RedirLessAnd                  // <&
	RedirGreatAnd                 // >&
	RedirLessGreat                // <>
	RedirDLess                    // <<
	RedirDLessDash                // <<-
)

func (op RedirOp) String() string {
	switch op {
	case RedirGreat:
		return ">"
	case RedirClobber:
		return ">|"
	case RedirDGreat:
		return ">>"
	case RedirLess:
		return "<"
	case RedirLessAnd:
		return "<&"
	case RedirGreatAnd:
		return ">&"
	case RedirLessGreat:
		return "<>"
	case RedirDLess:
		return "<<"
	case RedirDLessDash:
		return "<<-"
	default:
		return fmt.Sprintf("RedirOp(%d)", int(op))
	}
}

// defaultFd is the fd an operator applies to when no explicit number is
// given: 0 for input-style operators, 1 for output-style ones.
func (op RedirOp) defaultFd() int {
	switch op {
	case RedirDLess, RedirDLessDash, RedirLess, RedirLessAnd, RedirLessGreat:
		return 0
	default:
		return 1
	}
}

// Redirection is one redirection descriptor from the parser: the operator,
// an optional explicit fd token, and the operand word. The fd token is kept
// as text and rejected here if non-numeric; the parser does not pre-validate
// it.
type Redirection struct {
	Op  RedirOp
	Fd  string
	Arg string
}

// EvaluateRedirections evaluates the redirections for a command against a
// copy of this context's fd table and returns the resulting table. The
// context's own table is never mutated; if evaluation fails partway, every
// stream it opened is closed before the error is returned, so no half-open
// state is observable.
func (c *Context) EvaluateRedirections(redirects []Redirection) ([]*StreamHolder, error) {
	return c.evaluateRedirections(redirects, CopyStreamHolders(c.holders))
}

func (c *Context) evaluateRedirections(redirects []Redirection, holders []*StreamHolder) (result []*StreamHolder, err error) {
	defer func() {
		if err != nil {
			for _, holder := range holders {
				holder.Close()
			}
		}
	}()

	for _, redir := range redirects {
		// Work out which fd to redirect.
		fd := redir.Op.defaultFd()
		if redir.Fd != "" {
			fd, err = strconv.Atoi(redir.Fd)
			if err != nil || fd < 0 {
				return nil, syntaxErrf("invalid fd %q before %s", redir.Fd, redir.Op)
			}
		}
		// If necessary, grow the fd table. New slots are unbound.
		for fd >= len(holders) {
			holders = append(holders, nil)
		}

		var stream *StreamHolder
		switch redir.Op {
		case RedirDLess, RedirDLessDash, RedirLessGreat:
			return nil, fmt.Errorf("%s redirection: %w", redir.Op, ErrUnsupported)

		case RedirGreat:
			name := c.resolvePath(redir.Arg)
			if c.NoClobber() {
				if exists, _ := afero.Exists(c.fs, name); exists {
					return nil, fmt.Errorf("%s: cannot overwrite existing file", redir.Arg)
				}
			}
			f, openErr := c.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
			if openErr != nil {
				return nil, fmt.Errorf("cannot open %s: %w", redir.Arg, openErr)
			}
			stream = NewStreamHolder(f, true)

		case RedirClobber, RedirDGreat:
			flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if redir.Op == RedirDGreat {
				flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
			}
			f, openErr := c.fs.OpenFile(c.resolvePath(redir.Arg), flag, 0666)
			if openErr != nil {
				return nil, fmt.Errorf("cannot open %s: %w", redir.Arg, openErr)
			}
			stream = NewStreamHolder(f, true)

		case RedirLess:
			f, openErr := c.fs.Open(c.resolvePath(redir.Arg))
			if openErr != nil {
				return nil, fmt.Errorf("cannot open %s: %w", redir.Arg, openErr)
			}
			stream = NewStreamHolder(f, true)

		case RedirLessAnd, RedirGreatAnd:
			fromFd, convErr := strconv.Atoi(redir.Arg)
			if convErr != nil {
				return nil, syntaxErrf("invalid fd %q after %s", redir.Arg, redir.Op)
			}
			// Duplication aliases the current table state; an out-of-range
			// fd duplicates as a closed binding.
			if fromFd >= 0 && fromFd < len(holders) {
				stream = holders[fromFd].Alias()
			}

		default:
			panic("interp: unknown redirection type")
		}

		// An owned holder displaced from the slot would otherwise leak.
		if old := holders[fd]; old != nil && old.Owned() {
			old.Close()
		}
		holders[fd] = stream
	}
	return holders, nil
}

// resolvePath makes redirection targets relative to the context's working
// directory.
func (c *Context) resolvePath(name string) string {
	if path.IsAbs(name) || c.dir == "" {
		return name
	}
	return path.Join(c.dir, name)
}
