package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/metaloop/debugs"
	"github.com/reusee/metaloop/generators"
	"github.com/reusee/metaloop/settings"
)

type Module struct {
	dscope.Module
	Generators generators.Module
	Settings   settings.Module
	Debugs     debugs.Module
}
