package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/filters"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/settings"
)

func validateFile(path string, loader configs.Loader, logger logs.Logger) (*filters.Policy, settings.Settings, error) {
	s, err := settings.Load(loader, os.Getenv)
	if err != nil {
		return nil, s, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, s, err
	}
	validator := filters.NewValidator(
		filters.WithMaxSteps(s.ActionMaxSteps),
		filters.WithLogger(logger),
	)
	policy, _, err := validator.Validate(string(source))
	return policy, s, err
}

func checkCommand(path string) func(configs.Loader, logs.Logger) {
	return func(
		loader configs.Loader,
		logger logs.Logger,
	) {
		policy, _, err := validateFile(path, loader, logger)
		var validationErr *filters.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Printf("%s: rejected (%s): %s\n", path, validationErr.Kind, validationErr.Error())
			os.Exit(1)
		}
		ce(err)
		fmt.Printf("%s: accepted %s {%s}\n", path, policy.Name(), policy.Params())
	}
}
