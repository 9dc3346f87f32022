package model

// TaskState represents the lifecycle state of a task.
type TaskState string

const (
	TaskStatePlanned  TaskState = "PLANNED"
	TaskStateRunning  TaskState = "RUNNING"
	TaskStateFinished TaskState = "FINISHED"
	TaskStateCanceled TaskState = "CANCELED"
	TaskStateAborted  TaskState = "ABORTED"
	TaskStateFailed   TaskState = "FAILED"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsDone returns true if the task is in a terminal state.
func (s TaskState) IsDone() bool {
	switch s {
	case TaskStateFinished, TaskStateCanceled, TaskStateAborted, TaskStateFailed:
		return true
	}
	return false
}

// StageExecutionState represents the lifecycle state of a stage execution.
type StageExecutionState string

const (
	StagePlanned          StageExecutionState = "PLANNED"
	StageScheduling       StageExecutionState = "SCHEDULING"
	StageSchedulingSplits StageExecutionState = "SCHEDULING_SPLITS"
	StageScheduled        StageExecutionState = "SCHEDULED"
	StageRunning          StageExecutionState = "RUNNING"
	StageFinished         StageExecutionState = "FINISHED"
	StageCanceled         StageExecutionState = "CANCELED"
	StageAborted          StageExecutionState = "ABORTED"
	StageFailed           StageExecutionState = "FAILED"
)

// String returns the string representation of the stage state.
func (s StageExecutionState) String() string {
	return string(s)
}

// IsDone returns true if the stage is in a terminal state.
func (s StageExecutionState) IsDone() bool {
	switch s {
	case StageFinished, StageCanceled, StageAborted, StageFailed:
		return true
	}
	return false
}

// ValidStageTransitions defines the allowed forward transitions for a stage.
// Any non-terminal state may additionally move to CANCELED, ABORTED, or FAILED.
var ValidStageTransitions = map[StageExecutionState][]StageExecutionState{
	StagePlanned:          {StageScheduling},
	StageScheduling:       {StageSchedulingSplits, StageScheduled, StageRunning},
	StageSchedulingSplits: {StageScheduled, StageRunning},
	StageScheduled:        {StageRunning},
	StageRunning:          {StageFinished},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s StageExecutionState) CanTransitionTo(next StageExecutionState) bool {
	if s.IsDone() {
		return false
	}
	switch next {
	case StageCanceled, StageAborted, StageFailed:
		return true
	}
	for _, allowed := range ValidStageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
