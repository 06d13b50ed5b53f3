package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/velosched/velosched/core/model"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the materialized practice schedule",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", err)
		}
	}()

	ctx := context.Background()
	today := model.DateOf(time.Now())
	next, err := svc.Planner.NextPractice(ctx, today)
	if err != nil {
		return err
	}
	practices, err := svc.Repo.ListPractices(ctx)
	if err != nil {
		return err
	}
	sort.Slice(practices, func(i, j int) bool { return practices[i].Date < practices[j].Date })
	for _, p := range practices {
		if !p.Active() {
			continue
		}
		marker := " "
		if next != nil && p.ID == next.ID {
			marker = ">"
		}
		status := p.Status()
		fmt.Printf("%s %s %s-%s @ %s [%s]\n", marker, p.Date, p.StartTime, p.EndTime, p.Location, status)
	}
	return nil
}
