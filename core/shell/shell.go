// Package shell drives the expansion and redirection engine: it lexes raw
// command lines into the word tokens and redirection descriptors the engine
// consumes, applies builtins, and launches everything else through a
// pluggable Runner.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gosh-sh/gosh/core/interp"
)

// Runner launches an external command bound to the given stream table and
// returns its exit status.
type Runner interface {
	Run(ctx *interp.Context, cl interp.CommandLine, holders []*interp.StreamHolder) (int, error)
}

// ExitError is returned by Eval when the 'exit' builtin runs; the caller
// stops its read loop and exits with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// Shell evaluates command lines against a context.
type Shell struct {
	Ctx    *interp.Context
	runner Runner
}

// New creates a shell around ctx and binds itself as the context's
// command-substitution interpreter.
func New(ctx *interp.Context, runner Runner) *Shell {
	s := &Shell{Ctx: ctx, runner: runner}
	ctx.BindInterpreter(s)
	return s
}

// Interpret runs script line by line with output redirected to out, and
// returns the exit status of the last command. It implements
// interp.Interpreter, which is what makes backtick substitution work.
func (s *Shell) Interpret(script string, out io.Writer) (int, error) {
	child := s.Ctx.Copy()
	child.ReplaceStream(1, interp.NewStreamHolder(toWriteCloser(out), false))
	sub := New(child, s.runner)

	status := 0
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		code, err := sub.Eval(line)
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code, nil
		}
		if err != nil {
			fmt.Fprintf(stderrOf(child), "gosh: %v\n", err)
			status = 1
			continue
		}
		status = code
	}
	return status, nil
}

// Eval lexes and runs a single command line. Variable assignments with no
// command word apply to the shell itself; assignments before a command word
// only affect that command's environment.
func (s *Shell) Eval(line string) (int, error) {
	cmd, err := Lex(line)
	if err != nil {
		return 1, err
	}
	if len(cmd.Words) == 0 {
		if err := s.Ctx.PerformAssignments(cmd.Assignments); err != nil {
			return 1, err
		}
		// Redirections with no command still open (and create) their
		// targets before being discarded.
		if len(cmd.Redirs) > 0 {
			redirs, err := s.expandRedirArgs(s.Ctx, cmd.Redirs)
			if err != nil {
				return 1, err
			}
			holders, err := s.Ctx.EvaluateRedirections(redirs)
			if err != nil {
				return 1, err
			}
			closeAll(holders)
		}
		return 0, nil
	}

	ctx := s.Ctx
	if len(cmd.Assignments) > 0 {
		ctx = s.Ctx.Copy()
		if err := ctx.PerformAssignments(cmd.Assignments); err != nil {
			return 1, err
		}
	}

	cl, err := ctx.ExpandAndSplitTokens(cmd.Words)
	if err != nil {
		return 1, err
	}
	redirs, err := s.expandRedirArgs(ctx, cmd.Redirs)
	if err != nil {
		return 1, err
	}
	holders, err := ctx.EvaluateRedirections(redirs)
	if err != nil {
		return 1, err
	}
	defer closeAll(holders)

	if cl.Name == "" {
		return 0, nil
	}

	if isBuiltin(cl.Name) {
		// Builtins run in the shell's own scope, so assignment prefixes
		// apply there too, as POSIX specifies for special builtins.
		if len(cmd.Assignments) > 0 {
			if err := s.Ctx.PerformAssignments(cmd.Assignments); err != nil {
				return 1, err
			}
		}
		status, err := s.runBuiltin(cl, holders)
		s.Ctx.SetLastReturnCode(status)
		return status, err
	}

	status, err := s.runner.Run(ctx, cl, holders)
	s.Ctx.SetLastReturnCode(status)
	if err != nil {
		return status, err
	}
	return status, nil
}

// expandRedirArgs expands each redirection operand. Fd-duplication
// operands stay as-is; file operands must expand to exactly one word.
func (s *Shell) expandRedirArgs(ctx *interp.Context, redirs []interp.Redirection) ([]interp.Redirection, error) {
	out := make([]interp.Redirection, len(redirs))
	for i, redir := range redirs {
		switch redir.Op {
		case interp.RedirLessAnd, interp.RedirGreatAnd:
			out[i] = redir
			continue
		}
		expanded, err := ctx.Expand(redir.Arg)
		if err != nil {
			return nil, err
		}
		words := ctx.Split(expanded)
		if len(words) != 1 {
			return nil, &interp.SyntaxError{Msg: fmt.Sprintf("%s: ambiguous redirect", redir.Arg)}
		}
		redir.Arg = words[0]
		out[i] = redir
	}
	return out, nil
}

func closeAll(holders []*interp.StreamHolder) {
	for _, h := range holders {
		h.Close()
	}
}

func stderrOf(ctx *interp.Context) io.Writer {
	if w, ok := ctx.Stream(2).(io.Writer); ok && w != nil {
		return w
	}
	return io.Discard
}

func toWriteCloser(w io.Writer) io.WriteCloser {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}
	return nopWriteCloser{w}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
