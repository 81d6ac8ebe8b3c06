package interp

import "sort"

// VariableSlot holds one shell variable's value and export flag. A variable
// that is unset has no slot at all; an empty value and an unset variable are
// distinct states.
type VariableSlot struct {
	Value    string
	Exported bool
}

func copyVariables(variables map[string]*VariableSlot) map[string]*VariableSlot {
	res := make(map[string]*VariableSlot, len(variables))
	for name, slot := range variables {
		copy := *slot
		res[name] = &copy
	}
	return res
}

// SetVar implements 'NAME=VALUE'. If variable NAME does not exist it is
// created as an unexported shell variable, otherwise the value is updated
// in place and the export flag is preserved.
func (c *Context) SetVar(name, value string) {
	if slot, ok := c.variables[name]; ok {
		slot.Value = value
		return
	}
	c.variables[name] = &VariableSlot{Value: value}
}

// UnsetVar implements 'unset NAME'. Unsetting an absent variable is not an
// error.
func (c *Context) UnsetVar(name string) {
	delete(c.variables, name)
}

// SetExported implements 'export NAME' and 'unexport NAME'. Exporting an
// absent variable creates it with an empty value; unexporting an absent
// variable does nothing.
func (c *Context) SetExported(name string, exported bool) {
	if slot, ok := c.variables[name]; ok {
		slot.Exported = exported
		return
	}
	if exported {
		c.variables[name] = &VariableSlot{Exported: true}
	}
}

// IsSet reports whether the variable is currently set in this context.
func (c *Context) IsSet(name string) bool {
	_, ok := c.variables[name]
	return ok
}

// LookupVar retrieves the value of a variable. The boolean is false if the
// variable is unset.
func (c *Context) LookupVar(name string) (string, bool) {
	slot, ok := c.variables[name]
	if !ok {
		return "", false
	}
	return slot.Value, true
}

// Environ returns the exported variables in "key=value" form, sorted, for
// handing to launched processes.
func (c *Context) Environ() []string {
	var env []string
	for name, slot := range c.variables {
		if slot.Exported {
			env = append(env, name+"="+slot.Value)
		}
	}
	sort.Strings(env)
	return env
}
