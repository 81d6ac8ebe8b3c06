package shell

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	"github.com/gosh-sh/gosh/core/interp"
)

// isBuiltin reports whether name is handled by the shell itself rather
// than launched through the Runner.
func isBuiltin(name string) bool {
	switch name {
	case "exit", "cd", "export", "unset", "set":
		return true
	}
	return false
}

// runBuiltin dispatches builtins. Builtins run against the shell's own
// context so their effects persist, with their output bound to the
// command's evaluated stream table.
func (s *Shell) runBuiltin(cl interp.CommandLine, holders []*interp.StreamHolder) (int, error) {
	switch cl.Name {
	case "exit":
		code := s.Ctx.LastReturnCode()
		if len(cl.Args) > 0 {
			if n, convErr := strconv.Atoi(cl.Args[0]); convErr == nil {
				code = n
			}
		}
		return code, &ExitError{Code: code}
	case "cd":
		return s.builtinCd(cl.Args, holders), nil
	case "export":
		return s.builtinExport(cl.Args, holders), nil
	case "unset":
		for _, name := range cl.Args {
			s.Ctx.UnsetVar(name)
		}
		return 0, nil
	case "set":
		return s.builtinSet(cl.Args, holders), nil
	default:
		panic("shell: not a builtin: " + cl.Name)
	}
}

func (s *Shell) builtinCd(args []string, holders []*interp.StreamHolder) int {
	var target string
	switch len(args) {
	case 0:
		target, _ = s.Ctx.LookupVar("HOME")
		if target == "" {
			fmt.Fprintln(writerFor(holders, 2), "cd: HOME not set")
			return 1
		}
	case 1:
		target = args[0]
	default:
		fmt.Fprintln(writerFor(holders, 2), "cd: too many arguments")
		return 1
	}

	if !path.IsAbs(target) {
		target = path.Join(s.Ctx.Dir(), target)
	}
	target = path.Clean(target)
	ok, err := afero.DirExists(s.Ctx.Fs(), target)
	if err != nil || !ok {
		fmt.Fprintf(writerFor(holders, 2), "cd: %s: no such directory\n", target)
		return 1
	}
	s.Ctx.SetDir(target)
	s.Ctx.SetVar("PWD", target)
	return 0
}

func (s *Shell) builtinExport(args []string, holders []*interp.StreamHolder) int {
	opts := getopt.New()
	unexport := opts.BoolLong("unexport", 'n', "remove the export attribute from each name")
	list := opts.BoolLong("print", 'p', "print the exported variables")

	if err := opts.Getopt(append([]string{"export"}, args...), nil); err != nil {
		fmt.Fprintf(writerFor(holders, 2), "export: %v\n", err)
		return 2
	}

	if *list {
		for _, kv := range s.Ctx.Environ() {
			fmt.Fprintf(writerFor(holders, 1), "export %s\n", kv)
		}
		return 0
	}

	for _, arg := range opts.Args() {
		name, value := arg, ""
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, value = arg[:eq], arg[eq+1:]
			s.Ctx.SetVar(name, value)
		}
		s.Ctx.SetExported(name, !*unexport)
	}
	return 0
}

// builtinSet handles 'set -o name' / 'set +o name' for the engine's three
// switches: noglob, notilde and noclobber. With no arguments it lists the
// current settings.
func (s *Shell) builtinSet(args []string, holders []*interp.StreamHolder) int {
	if len(args) == 0 {
		fmt.Fprintf(writerFor(holders, 1), "noglob     \t%s\n", onOff(!s.Ctx.Globbing()))
		fmt.Fprintf(writerFor(holders, 1), "notilde    \t%s\n", onOff(!s.Ctx.TildeExpansion()))
		fmt.Fprintf(writerFor(holders, 1), "noclobber  \t%s\n", onOff(s.Ctx.NoClobber()))
		return 0
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if (arg != "-o" && arg != "+o") || i+1 >= len(args) {
			fmt.Fprintf(writerFor(holders, 2), "set: usage: set [-o|+o] option\n")
			return 2
		}
		enable := arg == "-o"
		i++
		switch args[i] {
		case "noglob":
			s.Ctx.SetGlobbing(!enable)
		case "notilde":
			s.Ctx.SetTildeExpansion(!enable)
		case "noclobber":
			if enable {
				s.Ctx.SetVar("NOCLOBBER", "1")
			} else {
				s.Ctx.UnsetVar("NOCLOBBER")
			}
		default:
			fmt.Fprintf(writerFor(holders, 2), "set: %s: unknown option\n", args[i])
			return 2
		}
	}
	s.Ctx.SetOptions(s.optionFlags())
	return 0
}

// optionFlags renders the $- string: f when globbing is off, C when
// no-clobber is on.
func (s *Shell) optionFlags() string {
	var flags strings.Builder
	if !s.Ctx.Globbing() {
		flags.WriteByte('f')
	}
	if s.Ctx.NoClobber() {
		flags.WriteByte('C')
	}
	return flags.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func writerFor(holders []*interp.StreamHolder, fd int) io.Writer {
	if fd < len(holders) {
		if w := holders[fd].Writer(); w != nil {
			return w
		}
	}
	return io.Discard
}
