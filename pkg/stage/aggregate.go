// Package stage reduces per-task execution reports into a consolidated
// stage-level execution summary. Aggregation is a pure function of its
// inputs: it performs one synchronous pass over the supplied task-report
// snapshot and returns a new immutable summary. Supplying a consistent
// snapshot (and synchronizing the prior runtime stats and peak-memory
// watermarks across calls) is the caller's responsibility.
package stage

import (
	"fmt"
	"sort"

	"github.com/abhibongale/presto/pkg/model"
)

// Params carries the inputs of one aggregation pass. All fields are required;
// TaskReports may be empty.
type Params struct {
	// StageExecutionID is used only to stamp the GC statistics.
	StageExecutionID model.StageExecutionID

	// State is the stage's current execution state, supplied by the caller,
	// not derived here.
	State model.StageExecutionState

	// FailureCause is passed through unmodified. May be nil.
	FailureCause *model.ExecutionFailureInfo

	// TaskReports is the consistent snapshot of current per-task reports.
	TaskReports []model.TaskReport

	// SchedulingCompleteMillis is the epoch-millis timestamp when split
	// scheduling finished, or 0 if it has not.
	SchedulingCompleteMillis int64

	// SplitDistribution is passed through unchanged.
	SplitDistribution model.DistributionSnapshot

	// StageRuntimeStats holds stage-level metrics recorded outside of tasks
	// (e.g. scheduling overhead). It is merged into the result, not replaced,
	// and not modified.
	StageRuntimeStats *model.RuntimeStats

	// Peak memory watermarks are tracked by the caller across invocations,
	// because task reports only carry current, not peak, usage.
	PeakUserMemoryBytes      int64
	PeakNodeTotalMemoryBytes int64

	// Lifespan counters are maintained by the scheduler and passed through.
	CompletedLifespans int
	TotalLifespans     int
}

// accumulator holds the running totals of one aggregation pass.
type accumulator struct {
	totalTasks     int
	runningTasks   int
	completedTasks int

	totalDrivers     int
	queuedDrivers    int
	runningDrivers   int
	blockedDrivers   int
	completedDrivers int

	cumulativeUserMemory   float64
	cumulativeTotalMemory  float64
	userMemoryReservation  int64
	totalMemoryReservation int64

	totalScheduledTime int64
	totalCPUTime       int64
	retriedCPUTime     int64
	totalBlockedTime   int64

	totalAllocation int64

	rawInputDataSize  int64
	rawInputPositions int64

	processedInputDataSize  int64
	processedInputPositions int64

	bufferedDataSize int64
	outputDataSize   int64
	outputPositions  int64

	physicalWrittenDataSize int64

	fullGcCount     int
	fullGcTaskCount int
	gcSecSeen       bool
	minFullGcSec    int
	maxFullGcSec    int
	totalFullGcSec  int

	fullyBlocked   bool
	blockedReasons map[model.BlockedReason]struct{}

	operatorStats map[model.OperatorStatsKey]model.OperatorStats
	runtimeStats  *model.RuntimeStats
}

// observeStatus folds one task's status into the accumulator: done/running
// classification, retried CPU attribution, the fully-blocked AND-reduction
// over running tasks, and live output-buffer usage.
func (a *accumulator) observeStatus(report *model.TaskReport, stageState model.StageExecutionState) {
	taskState := report.Status.State
	if taskState.IsDone() {
		a.completedTasks++
	} else {
		a.runningTasks++
	}

	// CPU spent on tasks that failed inside a finished stage produced output
	// that was discarded when the task was retried.
	if stageState == model.StageFinished && taskState == model.TaskStateFailed {
		a.retriedCPUTime += report.Stats.TotalCPUTimeNanos
	}

	if !taskState.IsDone() {
		a.fullyBlocked = a.fullyBlocked && report.Stats.FullyBlocked
		for _, reason := range report.Stats.BlockedReasons {
			a.blockedReasons[reason] = struct{}{}
		}
	}

	a.bufferedDataSize += report.OutputBuffers.TotalBufferedBytes
}

// observeStats folds one task's statistics block into the accumulator.
func (a *accumulator) observeStats(stats *model.TaskStats) {
	a.totalDrivers += stats.TotalDrivers
	a.queuedDrivers += stats.QueuedDrivers
	a.runningDrivers += stats.RunningDrivers
	a.blockedDrivers += stats.BlockedDrivers
	a.completedDrivers += stats.CompletedDrivers

	a.cumulativeUserMemory += stats.CumulativeUserMemory
	a.cumulativeTotalMemory += stats.CumulativeTotalMemory

	a.userMemoryReservation += stats.UserMemoryReservationBytes
	a.totalMemoryReservation += stats.UserMemoryReservationBytes + stats.SystemMemoryReservationBytes

	a.totalScheduledTime += stats.TotalScheduledTimeNanos
	a.totalCPUTime += stats.TotalCPUTimeNanos
	a.totalBlockedTime += stats.TotalBlockedTimeNanos

	a.totalAllocation += stats.TotalAllocationBytes

	a.rawInputDataSize += stats.RawInputDataSizeBytes
	a.rawInputPositions += stats.RawInputPositions

	a.processedInputDataSize += stats.ProcessedInputDataSizeBytes
	a.processedInputPositions += stats.ProcessedInputPositions

	a.outputDataSize += stats.OutputDataSizeBytes
	a.outputPositions += stats.OutputPositions

	a.physicalWrittenDataSize += stats.PhysicalWrittenDataSizeBytes

	a.fullGcCount += stats.FullGcCount
	if stats.FullGcCount > 0 {
		a.fullGcTaskCount++
	}

	// Per-task full-GC seconds: millis truncated down to whole seconds.
	// Min/max range over observed per-task values only, so a stage whose
	// every task spent time in GC does not report a minimum of zero.
	gcSec := int(stats.FullGcTimeMillis / 1000)
	a.totalFullGcSec += gcSec
	if !a.gcSecSeen {
		a.minFullGcSec = gcSec
		a.maxFullGcSec = gcSec
		a.gcSecSeen = true
	} else {
		if gcSec < a.minFullGcSec {
			a.minFullGcSec = gcSec
		}
		if gcSec > a.maxFullGcSec {
			a.maxFullGcSec = gcSec
		}
	}

	for _, pipeline := range stats.Pipelines {
		for _, op := range pipeline.OperatorSummaries {
			key := op.Key()
			if existing, ok := a.operatorStats[key]; ok {
				a.operatorStats[key] = existing.Add(op)
			} else {
				a.operatorStats[key] = op
			}
		}
	}

	a.runtimeStats.Merge(stats.RuntimeStats)
	a.runtimeStats.AddMetricValue(model.MetricDriverCountPerTask, model.RuntimeUnitNone, int64(stats.TotalDrivers))
	a.runtimeStats.AddMetricValue(model.MetricTaskElapsedTimeNanos, model.RuntimeUnitNanos, stats.ElapsedTimeNanos)
	a.runtimeStats.AddMetricValueIgnoreZero(model.MetricTaskQueuedTimeNanos, model.RuntimeUnitNanos, stats.QueuedTimeNanos)
	a.runtimeStats.AddMetricValue(model.MetricTaskScheduledTimeNanos, model.RuntimeUnitNanos, stats.TotalScheduledTimeNanos)
	a.runtimeStats.AddMetricValueIgnoreZero(model.MetricTaskBlockedTimeNanos, model.RuntimeUnitNanos, stats.TotalBlockedTimeNanos)
}

// Aggregate reduces the given task reports into one StageExecutionSummary.
// It has no side effects and does not modify its inputs; calling it twice
// with the same snapshot yields identical results.
func Aggregate(p Params) (*model.StageExecutionSummary, error) {
	if p.State == "" {
		return nil, fmt.Errorf("stage aggregate: state is required")
	}
	if p.StageRuntimeStats == nil {
		return nil, fmt.Errorf("stage aggregate: stage runtime stats is required")
	}

	acc := accumulator{
		totalTasks:     len(p.TaskReports),
		fullyBlocked:   true,
		blockedReasons: make(map[model.BlockedReason]struct{}),
		operatorStats:  make(map[model.OperatorStatsKey]model.OperatorStats),
		runtimeStats:   model.NewRuntimeStats(),
	}
	acc.runtimeStats.Merge(p.StageRuntimeStats)

	for i := range p.TaskReports {
		acc.observeStatus(&p.TaskReports[i], p.State)
	}
	for i := range p.TaskReports {
		acc.observeStats(&p.TaskReports[i].Stats)
	}

	stats := acc.build(p)
	return model.NewStageExecutionSummary(p.State, stats, p.TaskReports, p.FailureCause), nil
}

// build constructs the immutable stats record from the accumulated totals.
func (a *accumulator) build(p Params) model.StageExecutionStats {
	averageFullGcSec := 0
	if a.fullGcCount > 0 {
		averageFullGcSec = a.totalFullGcSec / a.fullGcCount
	}

	blockedReasons := make([]model.BlockedReason, 0, len(a.blockedReasons))
	for reason := range a.blockedReasons {
		blockedReasons = append(blockedReasons, reason)
	}
	sort.Slice(blockedReasons, func(i, j int) bool { return blockedReasons[i] < blockedReasons[j] })

	operatorSummaries := make([]model.OperatorStats, 0, len(a.operatorStats))
	for _, op := range a.operatorStats {
		operatorSummaries = append(operatorSummaries, op)
	}
	sort.Slice(operatorSummaries, func(i, j int) bool {
		ki, kj := operatorSummaries[i].Key(), operatorSummaries[j].Key()
		if ki.PipelineID != kj.PipelineID {
			return ki.PipelineID < kj.PipelineID
		}
		return ki.OperatorID < kj.OperatorID
	})

	return model.StageExecutionStats{
		SchedulingCompleteMillis: p.SchedulingCompleteMillis,
		GetSplitDistribution:     p.SplitDistribution,

		TotalTasks:     a.totalTasks,
		RunningTasks:   a.runningTasks,
		CompletedTasks: a.completedTasks,

		TotalLifespans:     p.TotalLifespans,
		CompletedLifespans: p.CompletedLifespans,

		TotalDrivers:     a.totalDrivers,
		QueuedDrivers:    a.queuedDrivers,
		RunningDrivers:   a.runningDrivers,
		BlockedDrivers:   a.blockedDrivers,
		CompletedDrivers: a.completedDrivers,

		CumulativeUserMemory:  a.cumulativeUserMemory,
		CumulativeTotalMemory: a.cumulativeTotalMemory,

		UserMemoryReservationBytes:  a.userMemoryReservation,
		TotalMemoryReservationBytes: a.totalMemoryReservation,

		PeakUserMemoryReservationBytes:      p.PeakUserMemoryBytes,
		PeakNodeTotalMemoryReservationBytes: p.PeakNodeTotalMemoryBytes,

		TotalScheduledTimeNanos: a.totalScheduledTime,
		TotalCPUTimeNanos:       a.totalCPUTime,
		RetriedCPUTimeNanos:     a.retriedCPUTime,
		TotalBlockedTimeNanos:   a.totalBlockedTime,

		// A stage with zero running tasks is not blocked, even though the
		// AND-reduction over an empty set is vacuously true.
		FullyBlocked:   a.fullyBlocked && a.runningTasks > 0,
		BlockedReasons: blockedReasons,

		TotalAllocationBytes: a.totalAllocation,

		RawInputDataSizeBytes:       a.rawInputDataSize,
		RawInputPositions:           a.rawInputPositions,
		ProcessedInputDataSizeBytes: a.processedInputDataSize,
		ProcessedInputPositions:     a.processedInputPositions,
		BufferedDataSizeBytes:       a.bufferedDataSize,
		OutputDataSizeBytes:         a.outputDataSize,
		OutputPositions:             a.outputPositions,

		PhysicalWrittenDataSizeBytes: a.physicalWrittenDataSize,

		GcInfo: model.StageGcStatistics{
			StageID:          p.StageExecutionID.StageID,
			StageExecutionID: p.StageExecutionID.ID,
			Tasks:            a.totalTasks,
			FullGcTasks:      a.fullGcTaskCount,
			MinFullGcSec:     a.minFullGcSec,
			MaxFullGcSec:     a.maxFullGcSec,
			TotalFullGcSec:   a.totalFullGcSec,
			AverageFullGcSec: averageFullGcSec,
		},

		OperatorSummaries: operatorSummaries,

		RuntimeStats: a.runtimeStats,
	}
}
