package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/settings"
	"github.com/reusee/metaloop/storages"
)

func openLedger(loader configs.Loader, logger logs.Logger) *storages.Ledger {
	s, err := settings.Load(loader, os.Getenv)
	ce(err)
	if s.DBPath == "" {
		ce(fmt.Errorf("no ledger configured, set -db, db_path or METALOOP_DB"))
	}
	ledger, err := storages.Open(s.DBPath, logger)
	ce(err)
	return ledger
}

func runsCommand(
	ctx context.Context,
	loader configs.Loader,
	logger logs.Logger,
) {
	ledger := openLedger(loader, logger)
	defer ledger.Close()
	runs, err := ledger.Runs(ctx)
	ce(err)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tHORIZON\tMETA\tSEGMENTS\tATTEMPTS\tCOST\tBASELINE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			run.Horizon,
			run.MetaSteps,
			run.Segments,
			run.Attempts,
			formatCost(run.TotalCost.Valid, run.TotalCost.Float64),
			formatCost(run.BaselineCost.Valid, run.BaselineCost.Float64),
		)
	}
	ce(w.Flush())
}

func formatCost(valid bool, v float64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func showCommand(id string) func(context.Context, configs.Loader, logs.Logger) {
	return func(
		ctx context.Context,
		loader configs.Loader,
		logger logs.Logger,
	) {
		ledger := openLedger(loader, logger)
		defer ledger.Close()

		segments, err := ledger.Segments(ctx, id)
		ce(err)
		for _, segment := range segments {
			fmt.Printf("segment %d: policy %s, steps %d, cost %.3f, end %s, params {%s}\n",
				segment.Index,
				segment.PolicyName,
				segment.Steps,
				segment.SegmentCost,
				segment.EndState,
				segment.MetaParams,
			)
		}

		attempts, err := ledger.Attempts(ctx, id)
		ce(err)
		for _, attempt := range attempts {
			outcome := "rejected: " + attempt.Rejection
			if attempt.Accepted {
				outcome = "accepted " + attempt.PolicyName
			}
			if attempt.FellBack {
				outcome += " (reused last code)"
			}
			fmt.Printf("meta step %d attempt %d: %s\n", attempt.MetaStep, attempt.Number, outcome)
		}
	}
}
