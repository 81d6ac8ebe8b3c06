package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"github.com/gosh-sh/gosh/core/config"
	"github.com/gosh-sh/gosh/core/shell"
)

var errColor = color.New(color.FgRed)

// prompt resolves the interactive prompt: PS1 wins over the configured one.
func prompt(sh *shell.Shell, configuration *config.Configuration) string {
	if ps1, ok := sh.Ctx.LookupVar("PS1"); ok && ps1 != "" {
		return ps1
	}
	if configuration.Prompt != "" {
		return configuration.Prompt
	}
	return config.DefaultPrompt
}

func runInteractive(sh *shell.Shell, configuration *config.Configuration) error {
	rl, err := readline.New(prompt(sh, configuration))
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		rl.SetPrompt(prompt(sh, configuration))
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue // Abandon the current line.

		case err != nil:
			return err

		case len(line) == 0:
			continue
		}

		_, err = sh.Eval(line)
		var exit *shell.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		if err != nil {
			errColor.Fprintf(os.Stderr, "gosh: %v\n", err)
		}
	}
}
