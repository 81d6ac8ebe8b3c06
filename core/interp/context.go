// Package interp implements the expansion and redirection engine of a
// POSIX-style shell: scoped variable state, quote-aware $-expansion and
// field splitting, tilde and pathname-pattern expansion, and the evaluation
// of redirections onto an fd table with explicit stream ownership.
//
// Arithmetic substitution, here-documents, multi-field $@/$* expansion and
// the POSIX parameter operators other than plain value and length are
// recognized but fail with ErrUnsupported; they are never silently
// approximated.
package interp

import (
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Interpreter runs a nested script, writing the script's output to out, and
// returns its exit status. It is the collaborator backtick command
// substitution is built on; the call is synchronous and blocking.
type Interpreter interface {
	Interpret(script string, out io.Writer) (int, error)
}

// Context holds the shell variable and stream state for one lexical scope.
// A long-lived context holds the global shell variables; others are created
// by Copy as required to hold the scoped state for individual commands,
// pipelines, subshells and function calls.
type Context struct {
	interp Interpreter
	fs     afero.Fs
	dir    string

	variables map[string]*VariableSlot

	command        string
	args           []string
	lastReturnCode int
	shellPid       int
	lastAsyncPid   int
	options        string

	tildes   bool
	globbing bool

	holders []*StreamHolder
}

// NewContext creates a root context. The holders become the context's fd
// table; pass StdStreams for the conventional three-entry table.
func NewContext(interpreter Interpreter, fs afero.Fs, holders []*StreamHolder) *Context {
	return &Context{
		interp:    interpreter,
		fs:        fs,
		variables: make(map[string]*VariableSlot),
		holders:   holders,
		tildes:    true,
		globbing:  true,
	}
}

// Copy creates a context with the same variable bindings and streams as its
// parent. The variables are deep-copied; stream ownership is not
// transferred.
func (c *Context) Copy() *Context {
	return &Context{
		interp:         c.interp,
		fs:             c.fs,
		dir:            c.dir,
		variables:      copyVariables(c.variables),
		command:        c.command,
		args:           append([]string(nil), c.args...),
		lastReturnCode: c.lastReturnCode,
		shellPid:       c.shellPid,
		lastAsyncPid:   c.lastAsyncPid,
		options:        c.options,
		tildes:         c.tildes,
		globbing:       c.globbing,
		holders:        CopyStreamHolders(c.holders),
	}
}

// BindInterpreter attaches the command-substitution collaborator. The shell
// driver calls this once the driver itself exists; the engine only ever
// invokes it through the Interpreter interface.
func (c *Context) BindInterpreter(interpreter Interpreter) {
	c.interp = interpreter
}

// Fs returns the filesystem redirections and globbing operate on.
func (c *Context) Fs() afero.Fs {
	return c.fs
}

// Dir returns the working directory used to resolve relative paths.
func (c *Context) Dir() string {
	return c.dir
}

func (c *Context) SetDir(dir string) {
	c.dir = dir
}

// SetPositional sets the command name ($0) and positional arguments ($1..).
func (c *Context) SetPositional(command string, args []string) {
	c.command = command
	c.args = append([]string(nil), args...)
}

func (c *Context) Command() string {
	return c.command
}

func (c *Context) Args() []string {
	return append([]string(nil), c.args...)
}

func (c *Context) LastReturnCode() int {
	return c.lastReturnCode
}

func (c *Context) SetLastReturnCode(code int) {
	c.lastReturnCode = code
}

func (c *Context) ShellPid() int {
	return c.shellPid
}

func (c *Context) SetShellPid(pid int) {
	c.shellPid = pid
}

func (c *Context) LastAsyncPid() int {
	return c.lastAsyncPid
}

func (c *Context) SetLastAsyncPid(pid int) {
	c.lastAsyncPid = pid
}

// Options returns the active option-flags string ($-).
func (c *Context) Options() string {
	return c.options
}

func (c *Context) SetOptions(options string) {
	c.options = options
}

// SetTildeExpansion enables or disables leading-~ substitution.
func (c *Context) SetTildeExpansion(enabled bool) {
	c.tildes = enabled
}

func (c *Context) TildeExpansion() bool {
	return c.tildes
}

// SetGlobbing enables or disables pathname-pattern expansion.
func (c *Context) SetGlobbing(enabled bool) {
	c.globbing = enabled
}

func (c *Context) Globbing() bool {
	return c.globbing
}

// NoClobber reports whether '>' redirections may truncate existing files.
// The policy is driven by the NOCLOBBER variable being set.
func (c *Context) NoClobber() bool {
	return c.IsSet("NOCLOBBER")
}

// Stream returns the stream bound to the given fd, or nil if the slot is
// out of range or unbound. A negative index is a defect in the caller.
func (c *Context) Stream(fd int) io.Closer {
	if fd < 0 {
		panic("interp: negative stream index")
	}
	if fd >= len(c.holders) || c.holders[fd] == nil {
		return nil
	}
	return c.holders[fd].Stream()
}

// ReplaceStream rebinds an fd slot, growing the table if needed. The
// previous binding is closed if this context owned it.
func (c *Context) ReplaceStream(fd int, holder *StreamHolder) {
	if fd < 0 {
		panic("interp: negative stream index")
	}
	for fd >= len(c.holders) {
		c.holders = append(c.holders, nil)
	}
	if old := c.holders[fd]; old.Owned() {
		old.Close()
	}
	c.holders[fd] = holder
}

// Holders returns a copy of the fd table without passing ownership.
func (c *Context) Holders() []*StreamHolder {
	return CopyStreamHolders(c.holders)
}

// Close releases the streams this context owns. Borrowed streams are left
// for their owning scope.
func (c *Context) Close() {
	for _, holder := range c.holders {
		holder.Close()
	}
}

// PerformAssignments applies 'NAME=VALUE' tokens to this context. Values
// are expanded; the variables are created unexported.
func (c *Context) PerformAssignments(assignments []string) error {
	for _, assignment := range assignments {
		pos := strings.IndexByte(assignment, '=')
		if pos <= 0 {
			return syntaxErrf("misplaced '=' in assignment %q", assignment)
		}
		value, err := c.Expand(assignment[pos+1:])
		if err != nil {
			return err
		}
		c.SetVar(assignment[:pos], value)
	}
	return nil
}
