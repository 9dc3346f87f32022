package model

// StageGcStatistics summarizes full (stop-the-world) garbage collections
// across the tasks of one stage execution.
type StageGcStatistics struct {
	StageID          int `json:"stageId"`
	StageExecutionID int `json:"stageExecutionId"`
	Tasks            int `json:"tasks"`
	FullGcTasks      int `json:"fullGcTasks"`
	MinFullGcSec     int `json:"minFullGcSec"`
	MaxFullGcSec     int `json:"maxFullGcSec"`
	TotalFullGcSec   int `json:"totalFullGcSec"`
	AverageFullGcSec int `json:"averageFullGcSec"`
}

// StageExecutionStats is the aggregated statistics block of one stage
// execution. Instances are immutable once constructed; a fresh aggregation
// pass produces a new value. Field names are part of the external
// serialization contract and must stay stable.
type StageExecutionStats struct {
	SchedulingCompleteMillis int64                `json:"schedulingCompleteInMillis"`
	GetSplitDistribution     DistributionSnapshot `json:"getSplitDistribution"`

	TotalTasks     int `json:"totalTasks"`
	RunningTasks   int `json:"runningTasks"`
	CompletedTasks int `json:"completedTasks"`

	TotalLifespans     int `json:"totalLifespans"`
	CompletedLifespans int `json:"completedLifespans"`

	TotalDrivers     int `json:"totalDrivers"`
	QueuedDrivers    int `json:"queuedDrivers"`
	RunningDrivers   int `json:"runningDrivers"`
	BlockedDrivers   int `json:"blockedDrivers"`
	CompletedDrivers int `json:"completedDrivers"`

	CumulativeUserMemory  float64 `json:"cumulativeUserMemory"`
	CumulativeTotalMemory float64 `json:"cumulativeTotalMemory"`

	UserMemoryReservationBytes  int64 `json:"userMemoryReservation"`
	TotalMemoryReservationBytes int64 `json:"totalMemoryReservation"`

	PeakUserMemoryReservationBytes      int64 `json:"peakUserMemoryReservation"`
	PeakNodeTotalMemoryReservationBytes int64 `json:"peakNodeTotalMemoryReservation"`

	TotalScheduledTimeNanos int64 `json:"totalScheduledTimeInNanos"`
	TotalCPUTimeNanos       int64 `json:"totalCpuTimeInNanos"`
	RetriedCPUTimeNanos     int64 `json:"retriedCpuTimeInNanos"`
	TotalBlockedTimeNanos   int64 `json:"totalBlockedTimeInNanos"`

	FullyBlocked   bool            `json:"fullyBlocked"`
	BlockedReasons []BlockedReason `json:"blockedReasons"`

	TotalAllocationBytes int64 `json:"totalAllocationInBytes"`

	RawInputDataSizeBytes       int64 `json:"rawInputDataSizeInBytes"`
	RawInputPositions           int64 `json:"rawInputPositions"`
	ProcessedInputDataSizeBytes int64 `json:"processedInputDataSizeInBytes"`
	ProcessedInputPositions     int64 `json:"processedInputPositions"`
	BufferedDataSizeBytes       int64 `json:"bufferedDataSizeInBytes"`
	OutputDataSizeBytes         int64 `json:"outputDataSizeInBytes"`
	OutputPositions             int64 `json:"outputPositions"`

	PhysicalWrittenDataSizeBytes int64 `json:"physicalWrittenDataSizeInBytes"`

	GcInfo StageGcStatistics `json:"gcInfo"`

	OperatorSummaries []OperatorStats `json:"operatorSummaries"`

	RuntimeStats *RuntimeStats `json:"runtimeStats"`
}

// ZeroStageExecutionStats returns the stats block of a stage that has not been
// scheduled: all counters zero, empty collections, stamped with the stage id.
func ZeroStageExecutionStats(stageID int) StageExecutionStats {
	return StageExecutionStats{
		BlockedReasons:    []BlockedReason{},
		GcInfo:            StageGcStatistics{StageID: stageID},
		OperatorSummaries: []OperatorStats{},
		RuntimeStats:      NewRuntimeStats(),
	}
}
