package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gosh-sh/gosh/core/config"
	"github.com/gosh-sh/gosh/core/interp"
	"github.com/gosh-sh/gosh/core/shell"
)

var (
	cfgPath string
	script  string
)

// rootCmd runs the shell: interactively, from -c, or from a script file.
var rootCmd = &cobra.Command{
	Use:   "gosh [script-file]",
	Short: "A small POSIX-style shell",
	Long: `gosh is a shell built around a quote-aware expansion and
redirection engine: parameter expansion, command substitution, field
splitting, tilde and pathname expansion, and fd redirection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShell,

	SilenceUsage: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a config.yaml directory")
	rootCmd.Flags().StringVarP(&script, "command", "c", "", "run the given commands and exit")
}

func loadConfig(fsys afero.Fs) *config.Configuration {
	if cfgPath == "" {
		return config.Default()
	}
	configuration, err := config.Load(fsys, cfgPath)
	if err != nil {
		log.Printf("Couldn't load config: %v", err)
		return config.Default()
	}
	return configuration
}

// newRootContext builds the top-level shell context: the process's own
// streams, its environment exported into the variable store, and the
// configured defaults applied on top.
func newRootContext(fsys afero.Fs, configuration *config.Configuration) *interp.Context {
	ctx := interp.NewContext(nil, fsys, interp.StdStreams(os.Stdin, os.Stdout, os.Stderr))
	ctx.SetShellPid(os.Getpid())
	if wd, err := os.Getwd(); err == nil {
		ctx.SetDir(wd)
		ctx.SetVar("PWD", wd)
	}

	for _, kv := range os.Environ() {
		split := strings.SplitN(kv, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		ctx.SetVar(key, value)
		ctx.SetExported(key, true)
	}

	configuration.Apply(ctx)
	return ctx
}

func runShell(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	configuration := loadConfig(fsys)
	ctx := newRootContext(fsys, configuration)
	sh := shell.New(ctx, shell.ExecRunner{})

	switch {
	case script != "":
		ctx.SetPositional("gosh", args)
		return runScript(sh, script)
	case len(args) == 1:
		contents, err := afero.ReadFile(fsys, args[0])
		if err != nil {
			return err
		}
		ctx.SetPositional(args[0], nil)
		return runScript(sh, string(contents))
	default:
		ctx.SetPositional("gosh", nil)
		return runInteractive(sh, configuration)
	}
}

func runScript(sh *shell.Shell, contents string) error {
	status, err := sh.Interpret(contents, os.Stdout)
	if err != nil {
		return err
	}
	if status != 0 {
		os.Exit(status)
	}
	return nil
}
