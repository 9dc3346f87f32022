package model

import "fmt"

// OperatorStatsKey identifies one operator within one pipeline of a stage.
// Same-keyed stats from different tasks are combined, never overwritten.
type OperatorStatsKey struct {
	PipelineID int
	OperatorID int
}

// String returns the "pipeline.operator" form used for map keys and logs.
func (k OperatorStatsKey) String() string {
	return fmt.Sprintf("%d.%d", k.PipelineID, k.OperatorID)
}

// OperatorStats holds per-operator counters reported by a task.
type OperatorStats struct {
	PipelineID   int    `json:"pipelineId"`
	OperatorID   int    `json:"operatorId"`
	PlanNodeID   string `json:"planNodeId,omitempty"`
	OperatorType string `json:"operatorType,omitempty"`

	TotalDrivers int64 `json:"totalDrivers"`

	AddInputCalls     int64 `json:"addInputCalls"`
	AddInputWallNanos int64 `json:"addInputWallInNanos"`
	AddInputCPUNanos  int64 `json:"addInputCpuInNanos"`

	InputDataSizeBytes int64 `json:"inputDataSizeInBytes"`
	InputPositions     int64 `json:"inputPositions"`

	GetOutputCalls     int64 `json:"getOutputCalls"`
	GetOutputWallNanos int64 `json:"getOutputWallInNanos"`
	GetOutputCPUNanos  int64 `json:"getOutputCpuInNanos"`

	OutputDataSizeBytes int64 `json:"outputDataSizeInBytes"`
	OutputPositions     int64 `json:"outputPositions"`

	BlockedWallNanos int64 `json:"blockedWallInNanos"`

	UserMemoryReservationBytes   int64 `json:"userMemoryReservationInBytes"`
	SystemMemoryReservationBytes int64 `json:"systemMemoryReservationInBytes"`
	PeakMemoryReservationBytes   int64 `json:"peakTotalMemoryReservationInBytes"`
}

// Key returns the merge key for these stats.
func (o OperatorStats) Key() OperatorStatsKey {
	return OperatorStatsKey{PipelineID: o.PipelineID, OperatorID: o.OperatorID}
}

// Add combines two same-keyed OperatorStats. The operation is associative and
// commutative: counters are summed, gauges take the max, and qualitative
// fields (plan node, operator type) are kept from whichever side has them.
func (o OperatorStats) Add(other OperatorStats) OperatorStats {
	sum := o
	if sum.PlanNodeID == "" {
		sum.PlanNodeID = other.PlanNodeID
	}
	if sum.OperatorType == "" {
		sum.OperatorType = other.OperatorType
	}

	sum.TotalDrivers += other.TotalDrivers

	sum.AddInputCalls += other.AddInputCalls
	sum.AddInputWallNanos += other.AddInputWallNanos
	sum.AddInputCPUNanos += other.AddInputCPUNanos

	sum.InputDataSizeBytes += other.InputDataSizeBytes
	sum.InputPositions += other.InputPositions

	sum.GetOutputCalls += other.GetOutputCalls
	sum.GetOutputWallNanos += other.GetOutputWallNanos
	sum.GetOutputCPUNanos += other.GetOutputCPUNanos

	sum.OutputDataSizeBytes += other.OutputDataSizeBytes
	sum.OutputPositions += other.OutputPositions

	sum.BlockedWallNanos += other.BlockedWallNanos

	sum.UserMemoryReservationBytes += other.UserMemoryReservationBytes
	sum.SystemMemoryReservationBytes += other.SystemMemoryReservationBytes
	if other.PeakMemoryReservationBytes > sum.PeakMemoryReservationBytes {
		sum.PeakMemoryReservationBytes = other.PeakMemoryReservationBytes
	}

	return sum
}

// PipelineStats groups the operator summaries of one pipeline within a task.
type PipelineStats struct {
	PipelineID        int             `json:"pipelineId"`
	OperatorSummaries []OperatorStats `json:"operatorSummaries,omitempty"`
}
