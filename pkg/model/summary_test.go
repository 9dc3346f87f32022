package model

import "testing"

func taskWithState(state TaskState) TaskReport {
	return TaskReport{Status: TaskStatus{State: state}}
}

func TestStageExecutionSummary_IsFinal(t *testing.T) {
	tests := []struct {
		name  string
		state StageExecutionState
		tasks []TaskReport
		want  bool
	}{
		{"terminal stage, no tasks", StageFinished, nil, true},
		{"terminal stage, all tasks done", StageFailed, []TaskReport{
			taskWithState(TaskStateFinished), taskWithState(TaskStateFailed),
		}, true},
		{"terminal stage, one task running", StageFinished, []TaskReport{
			taskWithState(TaskStateFinished), taskWithState(TaskStateRunning),
		}, false},
		{"running stage, all tasks done", StageRunning, []TaskReport{
			taskWithState(TaskStateFinished),
		}, false},
		{"running stage, tasks running", StageRunning, []TaskReport{
			taskWithState(TaskStateRunning),
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStageExecutionSummary(tt.state, ZeroStageExecutionStats(0), tt.tasks, nil)
			if got := s.IsFinal(); got != tt.want {
				t.Errorf("IsFinal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnscheduledStageExecutionSummary(t *testing.T) {
	tests := []struct {
		name      string
		queryDone bool
		wantState StageExecutionState
	}{
		{"query still running", false, StagePlanned},
		{"query already done", true, StageAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := UnscheduledStageExecutionSummary(7, tt.queryDone)
			if s.State != tt.wantState {
				t.Errorf("State = %q, want %q", s.State, tt.wantState)
			}
			if len(s.Tasks) != 0 {
				t.Errorf("Tasks = %d entries, want 0", len(s.Tasks))
			}
			if s.FailureCause != nil {
				t.Error("FailureCause should be nil")
			}
			if s.Stats.TotalTasks != 0 || s.Stats.TotalCPUTimeNanos != 0 {
				t.Error("stats should be zero-valued")
			}
			if s.Stats.GcInfo.StageID != 7 {
				t.Errorf("GcInfo.StageID = %d, want 7", s.Stats.GcInfo.StageID)
			}
		})
	}
}
