package generators

import (
	"github.com/reusee/dscope"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/nets"
)

// Module provides the task and code generators. The retry policy depends on
// modes.Mode, which the caller puts in scope.
type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
	Nets    nets.Module
}
