package model

// StageExecutionSummary is the consolidated view of one stage execution:
// the caller-supplied state, the aggregated stats block, the task reports the
// stats were derived from, and the failure cause, if any. Summaries are
// immutable once constructed; a new snapshot requires a fresh aggregation.
type StageExecutionSummary struct {
	State        StageExecutionState   `json:"state"`
	Stats        StageExecutionStats   `json:"stats"`
	Tasks        []TaskReport          `json:"tasks"`
	FailureCause *ExecutionFailureInfo `json:"failureCause,omitempty"`
}

// NewStageExecutionSummary constructs a summary, retaining a defensive copy of
// the task-report list.
func NewStageExecutionSummary(state StageExecutionState, stats StageExecutionStats, tasks []TaskReport, failureCause *ExecutionFailureInfo) *StageExecutionSummary {
	retained := make([]TaskReport, len(tasks))
	copy(retained, tasks)
	return &StageExecutionSummary{
		State:        state,
		Stats:        stats,
		Tasks:        retained,
		FailureCause: failureCause,
	}
}

// IsFinal reports whether this summary can never change again: the stage state
// is terminal and every retained task is itself terminal. A summary is not
// final while any task is in flight, regardless of the stage-level state.
func (s *StageExecutionSummary) IsFinal() bool {
	if !s.State.IsDone() {
		return false
	}
	for _, task := range s.Tasks {
		if !task.Status.State.IsDone() {
			return false
		}
	}
	return true
}

// UnscheduledStageExecutionSummary returns the summary of a stage before any
// task has been created for it: zero stats, no tasks, no failure. The state is
// ABORTED when the owning query is already done, PLANNED otherwise.
func UnscheduledStageExecutionSummary(stageID int, queryDone bool) *StageExecutionSummary {
	state := StagePlanned
	if queryDone {
		state = StageAborted
	}
	return NewStageExecutionSummary(state, ZeroStageExecutionStats(stageID), nil, nil)
}
