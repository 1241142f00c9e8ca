package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/metaloop/cmds"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/modes"
	"github.com/reusee/metaloop/settings"
)

var command any = runCommand

func init() {
	cmds.Define("run", cmds.Func(func() {
		command = runCommand
	}).Desc("run the nested meta-policy loop (default)"))
	cmds.Define("check", cmds.Func(func(path string) {
		command = checkCommand(path)
	}).Desc("validate a policy program file"))
	cmds.Define("tap", cmds.Func(func(path string) {
		command = tapCommand(path)
	}).Desc("open a REPL with an accepted policy program"))
	cmds.Define("runs", cmds.Func(func() {
		command = runsCommand
	}).Desc("list runs in the ledger"))
	cmds.Define("show", cmds.Func(func(id string) {
		command = showCommand(id)
	}).Desc("print segments and attempts of a recorded run"))
}

func main() {
	cmds.Execute(os.Args[1:])

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		logger logs.Logger,
	) {
		ce(settings.LoadDotEnv(logger))
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	scope.Fork(
		dscope.Provide(ctx),
	).Call(command)
}
