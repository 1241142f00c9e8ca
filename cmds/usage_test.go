package cmds

import (
	"bytes"
	"strings"
	"testing"
)

func TestUsage(t *testing.T) {
	buf := new(bytes.Buffer)
	executor := NewExecutor()
	executor.output = buf
	executor.Define("check", Func(func(string) {}).Desc("validate a policy file"))
	executor.Define("-seed", Func(func(*uint64) {}).Desc("price seed"))
	executor.Define("ledger", Sub(map[string]*Command{
		"runs": Func(func() {}).Desc("list runs"),
	}).Desc("run ledger"))
	executor.PrintUsage()

	out := buf.String()
	for _, want := range []string{
		"check <string>\tvalidate a policy file",
		"-seed [uint64]\tprice seed",
		"(help, -help, --help)\tprint this usage",
		"ledger\trun ledger",
		"  runs\tlist runs",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}
