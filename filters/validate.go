package filters

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/policies"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	ActionName = "take_action"
	SourceName = "<generated_policy>"

	DefaultMaxSteps uint64 = 1_000_000
)

var fileOptions = &syntax.FileOptions{
	Set:   true,
	While: true,
}

// Validator turns untrusted policy programs into callable policies.
//
// A program must define exactly one top-level constructor whose parameters
// all carry numeric defaults, and whose body defines and returns a nested
// take_action(state) function:
//
//	def MyPolicy(threshold = 0.5, max_rate = 1.0):
//	    def take_action(state):
//	        ...
//	    return take_action
type Validator struct {
	maxSteps uint64
	logger   logs.Logger
}

type Option func(*Validator)

func WithMaxSteps(n uint64) Option {
	return func(v *Validator) {
		v.maxSteps = n
	}
}

func WithLogger(logger logs.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

func NewValidator(options ...Option) *Validator {
	v := &Validator{
		maxSteps: DefaultMaxSteps,
		logger:   logs.Discard(),
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *Validator) Validate(source string) (_ *Policy, _ policies.Params, err error) {
	defer func() {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			v.logger.Info("policy rejected",
				slog.String("kind", validationErr.Kind.String()),
				slog.String("reason", validationErr.Message),
			)
		}
	}()

	file, err := v.parse(source)
	if err != nil {
		return nil, nil, err
	}

	globals, err := v.execute(file)
	if err != nil {
		return nil, nil, err
	}

	def, ctor, err := findConstructor(file, globals)
	if err != nil {
		return nil, nil, err
	}

	params, err := constructorParams(def, ctor)
	if err != nil {
		return nil, nil, err
	}

	action, err := v.instantiate(ctor)
	if err != nil {
		return nil, nil, err
	}

	v.logger.Info("policy accepted",
		slog.String("name", ctor.Name()),
		slog.String("params", params.String()),
	)

	return &Policy{
		name:     ctor.Name(),
		source:   source,
		params:   params,
		action:   action,
		maxSteps: v.maxSteps,
		logger:   v.logger,
	}, params, nil
}

func (v *Validator) parse(source string) (*syntax.File, error) {
	file, err := fileOptions.Parse(SourceName, source, 0)
	if err != nil {
		if forbidden := importError(source, err); forbidden != nil {
			return nil, forbidden
		}
		return nil, &ValidationError{
			Kind:    KindSyntax,
			Message: fmt.Sprintf("syntax error: %v", err),
		}
	}

	var forbidden *ValidationError
	syntax.Walk(file, func(node syntax.Node) bool {
		if forbidden != nil {
			return false
		}
		if load, ok := node.(*syntax.LoadStmt); ok {
			start, _ := load.Span()
			forbidden = &ValidationError{
				Kind:    KindForbidden,
				Line:    int(start.Line),
				Message: fmt.Sprintf("forbidden construct: load statement at line %d", start.Line),
			}
			return false
		}
		return true
	})
	if forbidden != nil {
		return nil, forbidden
	}

	return file, nil
}

// importError reports a parse failure on an import or from keyword as a
// forbidden import statement. Both are reserved words to the scanner, so
// they only reach the parser outside string literals and comments.
func importError(source string, err error) *ValidationError {
	var syntaxErr syntax.Error
	if !errors.As(err, &syntaxErr) {
		return nil
	}
	if !strings.HasPrefix(syntaxErr.Msg, "got import") &&
		!strings.HasPrefix(syntaxErr.Msg, "got from") {
		return nil
	}
	line := int(syntaxErr.Pos.Line)
	stmt := "import"
	if lines := strings.Split(source, "\n"); line >= 1 && line <= len(lines) {
		text := []rune(lines[line-1])
		if col := int(syntaxErr.Pos.Col); col >= 1 && col <= len(text) {
			text = text[col-1:]
		}
		stmt = strings.TrimSpace(string(text))
	}
	return &ValidationError{
		Kind:    KindForbidden,
		Line:    line,
		Message: fmt.Sprintf("forbidden construct: import statement %q at line %d", stmt, line),
	}
}

func (v *Validator) newThread(name string) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			v.logger.Debug("policy print", slog.String("msg", msg))
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load is not allowed")
		},
	}
	thread.SetMaxExecutionSteps(v.maxSteps)
	return thread
}

func (v *Validator) execute(file *syntax.File) (starlark.StringDict, error) {
	program, err := starlark.FileProgram(file, predeclared.Has)
	if err != nil {
		return nil, &ValidationError{
			Kind:    KindExecution,
			Message: fmt.Sprintf("execution failed: %v", err),
		}
	}
	globals, err := program.Init(v.newThread("init"), predeclared)
	if err != nil {
		return nil, &ValidationError{
			Kind:    KindExecution,
			Message: fmt.Sprintf("execution failed: %v", err),
		}
	}
	globals.Freeze()
	return globals, nil
}

// findConstructor locates the single top-level def that defines a nested
// take_action.
func findConstructor(file *syntax.File, globals starlark.StringDict) (*syntax.DefStmt, *starlark.Function, error) {
	var defs []*syntax.DefStmt
	for _, stmt := range file.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || !definesAction(def) {
			continue
		}
		defs = append(defs, def)
	}
	if len(defs) != 1 {
		return nil, nil, reject(KindClassCount,
			"expected exactly one policy class with %s, found %d", ActionName, len(defs))
	}
	def := defs[0]
	ctor, ok := globals[def.Name.Name].(*starlark.Function)
	if !ok {
		return nil, nil, reject(KindClassCount,
			"expected exactly one policy class with %s, found 0", ActionName)
	}
	return def, ctor, nil
}

func definesAction(def *syntax.DefStmt) (found bool) {
	for _, stmt := range def.Body {
		syntax.Walk(stmt, func(node syntax.Node) bool {
			if found {
				return false
			}
			if inner, ok := node.(*syntax.DefStmt); ok && inner.Name.Name == ActionName {
				found = true
				return false
			}
			return true
		})
		if found {
			return
		}
	}
	return
}

func constructorParams(def *syntax.DefStmt, ctor *starlark.Function) (policies.Params, error) {
	for _, param := range def.Params {
		switch param := param.(type) {
		case *syntax.Ident:
			return nil, &ValidationError{
				Kind:    KindMissingDefault,
				Line:    int(param.NamePos.Line),
				Message: fmt.Sprintf("parameter '%s' in constructor must have a default value", param.Name),
			}
		case *syntax.UnaryExpr:
			return nil, reject(KindSignature,
				"constructor %s must not take variadic parameters", def.Name.Name)
		}
	}

	params := make(policies.Params)
	for i := range ctor.NumParams() {
		name, _ := ctor.Param(i)
		value := ctor.ParamDefault(i)
		if value == nil {
			return nil, &ValidationError{
				Kind:    KindMissingDefault,
				Message: fmt.Sprintf("parameter '%s' in constructor must have a default value", name),
			}
		}
		f, ok := starlark.AsFloat(value)
		if !ok {
			return nil, reject(KindSignature,
				"parameter '%s' default must be a number, got %s", name, value.Type())
		}
		params[name] = f
	}
	return params, nil
}

func (v *Validator) instantiate(ctor *starlark.Function) (*starlark.Function, error) {
	ret, err := starlark.Call(v.newThread("instantiate"), ctor, nil, nil)
	if err != nil {
		return nil, reject(KindInstantiate, "failed to instantiate %s: %v", ctor.Name(), err)
	}
	action, ok := ret.(*starlark.Function)
	if !ok {
		return nil, reject(KindInstantiate,
			"constructor %s must return %s, got %s", ctor.Name(), ActionName, ret.Type())
	}
	if action.Name() != ActionName {
		return nil, reject(KindInstantiate,
			"constructor %s must return %s, got function %s", ctor.Name(), ActionName, action.Name())
	}
	if action.NumParams() != 1 || action.HasVarargs() || action.HasKwargs() {
		return nil, reject(KindSignature,
			"%s must accept exactly one argument (state), got %d parameters", ActionName, action.NumParams())
	}
	return action, nil
}
