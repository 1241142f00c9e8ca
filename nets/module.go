package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
)

// Module provides the HTTP client used for code generation, with optional
// proxying.
type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
