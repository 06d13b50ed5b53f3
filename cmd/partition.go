package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velosched/velosched/core/model"
)

var (
	partitionDate   string
	partitionGroups int
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Compute practice groups for a date",
	RunE:  runPartition,
}

func init() {
	partitionCmd.Flags().StringVar(&partitionDate, "date", "", "practice date (YYYY-MM-DD)")
	partitionCmd.Flags().IntVar(&partitionGroups, "groups", 0, "force a group count (0 = auto)")
	rootCmd.AddCommand(partitionCmd)
}

func runPartition(cmd *cobra.Command, args []string) error {
	date, err := model.ParseDate(partitionDate)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", err)
		}
	}()

	res, err := svc.Planner.PartitionPractice(context.Background(), date, partitionGroups)
	if err != nil {
		return err
	}
	if res.Infeasible != nil {
		fmt.Printf("no feasible layout; candidate group counts:\n")
		for _, c := range res.Infeasible {
			fmt.Printf("  %d groups (size %d-%d)\n", c.GroupCount, c.MinSize, c.MaxSize)
		}
		return nil
	}
	for _, g := range res.Groups {
		fmt.Printf("%s (%s): %d riders, leader=%s sweep=%s\n",
			g.Label, g.FitnessTag, len(g.RiderIDs), g.Leader, g.Sweep)
		fmt.Printf("  riders: %s\n", strings.Join(g.RiderIDs, ", "))
	}
	return nil
}
