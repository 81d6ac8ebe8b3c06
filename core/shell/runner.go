package shell

import (
	"os/exec"

	"github.com/gosh-sh/gosh/core/interp"
)

// ExecRunner launches commands as real operating-system processes. Only the
// conventional three fds can be wired to a child process; higher slots are
// evaluated for their side effects but not inherited.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx *interp.Context, cl interp.CommandLine, holders []*interp.StreamHolder) (int, error) {
	cmd := exec.Command(cl.Name, cl.Args...)
	cmd.Env = ctx.Environ()
	cmd.Dir = ctx.Dir()
	if len(holders) > 0 {
		cmd.Stdin = holders[0].Reader()
	}
	if len(holders) > 1 {
		cmd.Stdout = holders[1].Writer()
	}
	if len(holders) > 2 {
		cmd.Stderr = holders[2].Writer()
	}

	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 127, err
	}
	return 0, nil
}
