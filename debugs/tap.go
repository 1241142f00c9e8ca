package debugs

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/reusee/metaloop/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens an interactive Starlark session over globals. It returns when
// stdin is closed.
type Tap func(ctx context.Context, what string, globals map[string]any)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) {
		names := slices.Sorted(maps.Keys(globals))
		logger.InfoContext(ctx, "tap: "+what,
			"globals", names,
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		mappings := make(starlark.StringDict, len(globals))
		for name, value := range globals {
			mappings[name] = toStarlarkValue(value)
		}
		for _, name := range names {
			fmt.Fprintf(os.Stderr, "%s: %s\n", name, mappings[name].Type())
		}

		thread := &starlark.Thread{
			Name: "tap " + what,
			Print: func(_ *starlark.Thread, msg string) {
				fmt.Fprintln(os.Stdout, msg)
			},
		}
		thread.SetLocal("context", ctx)
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, mappings)
	}
}
