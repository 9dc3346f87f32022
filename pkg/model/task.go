package model

// TaskStatus reports the current lifecycle position of a task.
type TaskStatus struct {
	State   TaskState `json:"state"`
	NodeID  string    `json:"nodeId,omitempty"`
	Version int64     `json:"version,omitempty"`
}

// OutputBufferInfo describes the current output-buffer usage of a task.
// TotalBufferedBytes is live backpressure, not cumulative output.
type OutputBufferInfo struct {
	State              string `json:"state,omitempty"`
	TotalBufferedBytes int64  `json:"totalBufferedBytes"`
}

// BlockedReason names an external condition a task is waiting on.
type BlockedReason string

const (
	BlockedWaitingForMemory BlockedReason = "WAITING_FOR_MEMORY"
)

// TaskStats is the statistics block reported by a single task. All counters
// are cumulative for the lifetime of the task unless noted otherwise.
type TaskStats struct {
	TotalDrivers     int `json:"totalDrivers"`
	QueuedDrivers    int `json:"queuedDrivers"`
	RunningDrivers   int `json:"runningDrivers"`
	BlockedDrivers   int `json:"blockedDrivers"`
	CompletedDrivers int `json:"completedDrivers"`

	// Cumulative memory is a time-integrated figure (byte-seconds) used for
	// billing and trend analysis, distinct from the point-in-time reservations.
	CumulativeUserMemory  float64 `json:"cumulativeUserMemory"`
	CumulativeTotalMemory float64 `json:"cumulativeTotalMemory"`

	UserMemoryReservationBytes   int64 `json:"userMemoryReservationInBytes"`
	SystemMemoryReservationBytes int64 `json:"systemMemoryReservationInBytes"`

	TotalScheduledTimeNanos int64 `json:"totalScheduledTimeInNanos"`
	TotalCPUTimeNanos       int64 `json:"totalCpuTimeInNanos"`
	TotalBlockedTimeNanos   int64 `json:"totalBlockedTimeInNanos"`
	ElapsedTimeNanos        int64 `json:"elapsedTimeInNanos"`
	QueuedTimeNanos         int64 `json:"queuedTimeInNanos"`

	TotalAllocationBytes int64 `json:"totalAllocationInBytes"`

	RawInputDataSizeBytes       int64 `json:"rawInputDataSizeInBytes"`
	RawInputPositions           int64 `json:"rawInputPositions"`
	ProcessedInputDataSizeBytes int64 `json:"processedInputDataSizeInBytes"`
	ProcessedInputPositions     int64 `json:"processedInputPositions"`
	OutputDataSizeBytes         int64 `json:"outputDataSizeInBytes"`
	OutputPositions             int64 `json:"outputPositions"`

	PhysicalWrittenDataSizeBytes int64 `json:"physicalWrittenDataSizeInBytes"`

	FullGcCount      int   `json:"fullGcCount"`
	FullGcTimeMillis int64 `json:"fullGcTimeInMillis"`

	FullyBlocked   bool            `json:"fullyBlocked"`
	BlockedReasons []BlockedReason `json:"blockedReasons,omitempty"`

	Pipelines []PipelineStats `json:"pipelines,omitempty"`

	RuntimeStats *RuntimeStats `json:"runtimeStats,omitempty"`
}

// TaskReport is one task's current execution report. It is produced and owned
// by the task-execution subsystem; the aggregator only reads it.
type TaskReport struct {
	TaskID        string           `json:"taskId"`
	Status        TaskStatus       `json:"taskStatus"`
	Stats         TaskStats        `json:"stats"`
	OutputBuffers OutputBufferInfo `json:"outputBuffers"`
}
