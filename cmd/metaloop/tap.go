package main

import (
	"context"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/debugs"
	"github.com/reusee/metaloop/logs"
)

func tapCommand(path string) func(context.Context, configs.Loader, logs.Logger, debugs.Tap) {
	return func(
		ctx context.Context,
		loader configs.Loader,
		logger logs.Logger,
		tap debugs.Tap,
	) {
		policy, s, err := validateFile(path, loader, logger)
		ce(err)
		prices, demand, err := s.Series()
		ce(err)
		env, err := battery.NewEnvironment(s.Battery, prices, demand)
		ce(err)
		tap(ctx, policy.Name(), debugs.PolicyGlobals(policy, env))
	}
}
