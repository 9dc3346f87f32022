package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhibongale/presto/pkg/model"
)

func newStatusCmd() *cobra.Command {
	var (
		flagUnscheduled bool
		flagQueryDone   bool
	)

	cmd := &cobra.Command{
		Use:   "status <stage.attempt>",
		Short: "Show the aggregated summary of a stage execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/stages/" + args[0] + "/summary"
			if flagUnscheduled {
				q := url.Values{}
				q.Set("unscheduled", "true")
				if flagQueryDone {
					q.Set("query_done", "true")
				}
				path += "?" + q.Encode()
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("get summary: %w", err)
			}

			var summary model.StageExecutionSummary
			if err := json.Unmarshal(resp.Data, &summary); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			printSummary(args[0], &summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagUnscheduled, "unscheduled", false, "Fall back to the unscheduled-stage summary when the execution is unknown")
	cmd.Flags().BoolVar(&flagQueryDone, "query-done", false, "With --unscheduled: the owning query has already finished")
	return cmd
}

func printSummary(id string, summary *model.StageExecutionSummary) {
	stats := &summary.Stats

	fmt.Printf("Stage execution: %s\n", id)
	fmt.Printf("  State:    %s", summary.State)
	if summary.IsFinal() {
		fmt.Printf(" (final)")
	}
	fmt.Println()
	fmt.Printf("  Tasks:    %d total, %d running, %d completed\n",
		stats.TotalTasks, stats.RunningTasks, stats.CompletedTasks)
	fmt.Printf("  Drivers:  %d total, %d queued, %d running, %d blocked, %d completed\n",
		stats.TotalDrivers, stats.QueuedDrivers, stats.RunningDrivers,
		stats.BlockedDrivers, stats.CompletedDrivers)

	fmt.Printf("  CPU:      %s", time.Duration(stats.TotalCPUTimeNanos))
	if stats.RetriedCPUTimeNanos > 0 {
		fmt.Printf(" (%s retried)", time.Duration(stats.RetriedCPUTimeNanos))
	}
	fmt.Println()
	fmt.Printf("  Sched:    %s scheduled, %s blocked\n",
		time.Duration(stats.TotalScheduledTimeNanos), time.Duration(stats.TotalBlockedTimeNanos))

	fmt.Printf("  Memory:   %s user (%s peak), %s total (%s node peak)\n",
		humanize.IBytes(uint64(stats.UserMemoryReservationBytes)),
		humanize.IBytes(uint64(stats.PeakUserMemoryReservationBytes)),
		humanize.IBytes(uint64(stats.TotalMemoryReservationBytes)),
		humanize.IBytes(uint64(stats.PeakNodeTotalMemoryReservationBytes)))

	fmt.Printf("  Input:    %s raw / %s rows, %s processed / %s rows\n",
		humanize.IBytes(uint64(stats.RawInputDataSizeBytes)),
		humanize.Comma(stats.RawInputPositions),
		humanize.IBytes(uint64(stats.ProcessedInputDataSizeBytes)),
		humanize.Comma(stats.ProcessedInputPositions))
	fmt.Printf("  Output:   %s / %s rows\n",
		humanize.IBytes(uint64(stats.OutputDataSizeBytes)),
		humanize.Comma(stats.OutputPositions))

	if stats.FullyBlocked {
		fmt.Printf("  Blocked:  fully blocked (%v)\n", stats.BlockedReasons)
	}

	gc := stats.GcInfo
	if gc.FullGcTasks > 0 {
		fmt.Printf("  Full GC:  %d of %d tasks, %ds total (min %ds, max %ds, avg %ds)\n",
			gc.FullGcTasks, gc.Tasks, gc.TotalFullGcSec,
			gc.MinFullGcSec, gc.MaxFullGcSec, gc.AverageFullGcSec)
	}

	if summary.FailureCause != nil {
		fmt.Printf("  Failure:  %s: %s\n", summary.FailureCause.Type, summary.FailureCause.Message)
	}
}
