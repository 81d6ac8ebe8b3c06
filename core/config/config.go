// Package config holds the shell's startup configuration: the prompt,
// default expansion switches, and variables seeded into the root context.
package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gosh-sh/gosh/core/interp"
)

const (
	// ConfigurationName is the name of the configuration file within its
	// directory.
	ConfigurationName = "config.yaml"

	// DefaultPrompt is used when neither the config nor PS1 set one.
	DefaultPrompt = "$ "
)

type Configuration struct {
	// Prompt is the interactive prompt; PS1 in the environment wins over
	// this.
	Prompt string `json:"prompt"`

	// NoClobber refuses '>' redirection onto existing files by setting the
	// NOCLOBBER variable at startup.
	NoClobber bool `json:"no_clobber"`

	// DisableTildeExpansion turns off leading-~ substitution.
	DisableTildeExpansion bool `json:"disable_tilde_expansion"`

	// DisableGlobbing turns off pathname-pattern expansion.
	DisableGlobbing bool `json:"disable_globbing"`

	// Vars are seeded into the root context before the first prompt.
	Vars []Var `json:"vars" validate:"unique=Name,dive"`
}

type Var struct {
	Name   string `json:"name" validate:"required"`
	Value  string `json:"value"`
	Export bool   `json:"export"`
}

// Default returns the configuration used when no config file is given.
func Default() *Configuration {
	return &Configuration{Prompt: DefaultPrompt}
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Apply seeds a context with the configured variables and switches.
func (c *Configuration) Apply(ctx *interp.Context) {
	for _, v := range c.Vars {
		ctx.SetVar(v.Name, v.Value)
		if v.Export {
			ctx.SetExported(v.Name, true)
		}
	}
	if c.NoClobber {
		ctx.SetVar("NOCLOBBER", "1")
	}
	ctx.SetTildeExpansion(!c.DisableTildeExpansion)
	ctx.SetGlobbing(!c.DisableGlobbing)
}
