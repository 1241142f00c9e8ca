package cmds

var GlobalExecutor = NewExecutor()

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

// Execute runs args against the global executor and panics on error.
func Execute(args []string) {
	GlobalExecutor.MustExecute(args)
}
