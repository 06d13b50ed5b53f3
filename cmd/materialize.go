package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var materializeDryRun bool

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Run one schedule materializer pass",
	RunE:  runMaterialize,
}

func init() {
	materializeCmd.Flags().BoolVar(&materializeDryRun, "dry-run", false, "print the plan without applying it")
	rootCmd.AddCommand(materializeCmd)
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", err)
		}
	}()

	if materializeDryRun {
		plan, err := svc.Planner.PlanMaterialize(context.Background())
		if err != nil {
			return err
		}
		for _, p := range plan.ToCreate {
			fmt.Printf("would create %s %s-%s @ %s\n", p.Date, p.StartTime, p.EndTime, p.Location)
		}
		for _, id := range plan.ToPrune {
			fmt.Printf("would prune %s\n", id)
		}
		if plan.Empty() {
			fmt.Println("schedule is up to date")
		}
		return nil
	}

	res, err := svc.Planner.Materialize(context.Background())
	if err != nil {
		return err
	}
	for _, p := range res.Created {
		fmt.Printf("created %s %s-%s @ %s\n", p.Date, p.StartTime, p.EndTime, p.Location)
	}
	for _, id := range res.Pruned {
		fmt.Printf("pruned %s\n", id)
	}
	if res.Failed > 0 {
		fmt.Printf("%d writes failed and will retry next pass\n", res.Failed)
	}
	fmt.Printf("%d created, %d pruned\n", len(res.Created), len(res.Pruned))
	return nil
}
