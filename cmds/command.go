package cmds

import (
	"fmt"
	"reflect"
	"strings"
)

// Command is a named action taking positional arguments, or a group of sub
// commands.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

// Signature renders the argument list for usage output. Pointer arguments
// are optional and shown in brackets.
func (c *Command) Signature() string {
	if !c.Func.IsValid() {
		return ""
	}
	b := new(strings.Builder)
	fnType := c.Func.Type()
	for i := range fnType.NumIn() {
		t := fnType.In(i)
		if t.Kind() == reflect.Pointer {
			fmt.Fprintf(b, " [%s]", t.Elem())
		} else {
			fmt.Fprintf(b, " <%s>", t)
		}
	}
	return b.String()
}

// Func wraps fn as a command. fn may return nothing or an error.
func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}
	fnType := fnValue.Type()
	switch {
	case fnType.NumOut() > 1:
		panic(fmt.Errorf("must return 0 or 1 value"))
	case fnType.NumOut() == 1 && fnType.Out(0) != errorType:
		panic(fmt.Errorf("must return error"))
	}
	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
