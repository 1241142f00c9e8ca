package logs

import (
	"io"
	"os"

	"github.com/reusee/metaloop/cmds"
)

var logFile = cmds.Var[string]("-log-file", "append logs to this file instead of stderr")

type Writer io.Writer

func (Module) Writer() Writer {
	if *logFile == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		// keep logging somewhere visible
		return os.Stderr
	}
	return f
}
