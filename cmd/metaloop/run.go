package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/cmds"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/filters"
	"github.com/reusee/metaloop/generators"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/loops"
	"github.com/reusee/metaloop/metas"
	"github.com/reusee/metaloop/policies"
	"github.com/reusee/metaloop/prompts"
	"github.com/reusee/metaloop/settings"
	"github.com/reusee/metaloop/storages"
)

var outFlag = cmds.Var[string]("-out", "write the run result as JSON to this file")

// Report is the JSON form of a finished run.
type Report struct {
	RunID        string            `json:"run_id,omitempty"`
	Settings     settings.Settings `json:"settings"`
	BaselineCost float64           `json:"baseline_cost"`
	TotalCost    float64           `json:"total_cost"`
	Savings      []float64         `json:"savings_pct"`
	FinalPolicy  string            `json:"final_policy"`
	FinalSource  string            `json:"final_source"`
	Result       *loops.Result     `json:"result"`
}

func runCommand(
	ctx context.Context,
	loader configs.Loader,
	logger logs.Logger,
	newSpan logs.NewSpan,
	getTaskGenerator generators.GetTaskGenerator,
	getCodeGenerator generators.GetCodeGenerator,
) {
	s, err := settings.Load(loader, os.Getenv)
	ce(err)
	prices, demand, err := s.Series()
	ce(err)

	baseline, err := baselineCost(s.Battery, prices, demand)
	ce(err)
	logger.InfoContext(ctx, "baseline run (battery idle)", "cost", baseline)

	env, err := battery.NewEnvironment(s.Battery, prices, demand)
	ce(err)
	initial, err := s.InitialPolicy()
	ce(err)

	var runLedger *storages.RunLedger
	if s.DBPath != "" {
		ledger, err := storages.Open(s.DBPath, logger)
		ce(err)
		defer ledger.Close()
		runLedger, err = ledger.BeginRun(ctx, storages.RunInfo{
			Horizon:   s.Battery.Horizon,
			MetaSteps: s.MetaSteps,
			Settings:  s,
		})
		ce(err)
	}

	taskGenerator, err := getTaskGenerator()
	ce(err)
	codeGenerator, err := getCodeGenerator()
	ce(err)

	validator := filters.NewValidator(
		filters.WithMaxSteps(s.ActionMaxSteps),
		filters.WithLogger(logger),
	)
	controllerOptions := []metas.Option{
		metas.WithMaxRetries(s.MaxRetries),
		metas.WithLogger(logger),
	}
	driverOptions := []loops.Option{
		loops.WithLogger(logger),
		loops.WithSpans(newSpan),
	}
	if runLedger != nil {
		controllerOptions = append(controllerOptions, metas.WithRecorder(runLedger))
		driverOptions = append(driverOptions, loops.WithRecorder(runLedger))
	}
	controller := metas.NewController(
		prompts.NewTasks(taskGenerator, logger, s.HistoryWindow),
		prompts.NewCodes(codeGenerator, logger),
		metas.FilterValidate(validator),
		controllerOptions...,
	)

	driver, err := loops.NewDriver(env, controller, loops.Config{
		MetaSteps: s.MetaSteps,
		Params:    s.Params,
		Policy:    initial,
	}, driverOptions...)
	ce(err)

	result, runErr := driver.Run(ctx)

	if runLedger != nil {
		outcome := storages.RunOutcome{
			Status:       storages.StatusDone,
			BaselineCost: &baseline,
			Err:          runErr,
		}
		switch {
		case errors.Is(runErr, context.Canceled):
			outcome.Status = storages.StatusCanceled
		case runErr != nil:
			outcome.Status = storages.StatusFailed
		default:
			total := result.TotalCost()
			outcome.TotalCost = &total
		}
		// the run context may be done already
		if err := runLedger.Finish(context.WithoutCancel(ctx), outcome); err != nil {
			logger.WarnContext(ctx, "finish run", "error", err)
		}
	}
	ce(runErr)

	report := Report{
		Settings:     s,
		BaselineCost: baseline,
		TotalCost:    result.TotalCost(),
		Savings:      savings(baseline, result.Segments),
		FinalPolicy:  result.FinalPolicy.Name(),
		FinalSource:  result.FinalPolicy.Source(),
		Result:       result,
	}
	if runLedger != nil {
		report.RunID = runLedger.ID()
	}
	printReport(os.Stdout, report)

	if *outFlag != "" {
		content, err := json.MarshalIndent(report, "", "  ")
		ce(err)
		ce(os.WriteFile(*outFlag, content, 0644))
		logger.InfoContext(ctx, "result written", "path", *outFlag)
	}
}

// baselineCost runs the whole horizon with the battery idle.
func baselineCost(params battery.Params, prices, demand []float64) (float64, error) {
	env, err := battery.NewEnvironment(params, prices, demand)
	if err != nil {
		return 0, err
	}
	var hold policies.Hold
	state := env.State()
	for range params.Horizon {
		action, err := hold.TakeAction(state)
		if err != nil {
			return 0, err
		}
		state, err = env.Step(action)
		if err != nil {
			return 0, err
		}
	}
	return state.Cost, nil
}

// savings compares each segment cost against the baseline, in percent.
// A zero baseline gives zero savings.
func savings(baseline float64, segments []loops.SegmentResult) []float64 {
	ret := make([]float64, len(segments))
	if baseline == 0 || math.IsNaN(baseline) {
		return ret
	}
	for i, segment := range segments {
		ret[i] = (baseline - segment.SegmentCost) / baseline * 100
	}
	return ret
}

func printReport(w io.Writer, report Report) {
	fmt.Fprintf(w, "baseline cost: %.3f\n", report.BaselineCost)
	fmt.Fprintf(w, "total cost:    %.3f\n", report.TotalCost)
	for i, segment := range report.Result.Segments {
		fmt.Fprintf(w, "segment %d: policy %s, cost %.3f, savings %.1f%%, params {%s}\n",
			segment.Index,
			segment.PolicyName,
			segment.SegmentCost,
			report.Savings[i],
			segment.MetaParams,
		)
	}
	if n := report.Result.ActionFallbacks; n > 0 {
		fmt.Fprintf(w, "invalid actions replaced: %d\n", n)
	}
	if n := report.Result.Skipped; n > 0 {
		fmt.Fprintf(w, "trailing steps not simulated: %d\n", n)
	}
	if report.RunID != "" {
		fmt.Fprintf(w, "run id: %s\n", report.RunID)
	}
}
