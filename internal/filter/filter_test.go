package filter

import (
	"testing"

	"github.com/abhibongale/presto/pkg/model"
)

func testSummary() *model.StageExecutionSummary {
	stats := model.ZeroStageExecutionStats(3)
	stats.TotalTasks = 12
	stats.TotalCPUTimeNanos = 5000
	return model.NewStageExecutionSummary(model.StageFailed, stats, []model.TaskReport{
		{TaskID: "t0", Status: model.TaskStatus{State: model.TaskStateFailed}},
	}, &model.ExecutionFailureInfo{Type: "OutOfMemoryError", Message: "oom"})
}

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"state match", `state == "FAILED"`, true},
		{"state mismatch", `state == "FINISHED"`, false},
		{"stats field", `stats.totalTasks > 10`, true},
		{"stats field false", `stats.totalTasks > 100`, false},
		{"compound", `state == "FAILED" && stats.totalCpuTimeInNanos >= 5000`, true},
		{"tasks array", `tasks.length == 1 && tasks[0].taskId == "t0"`, true},
		{"id variable", `id == "3.0"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.expr, err)
			}
			got, err := f.Matches("3.0", testSummary())
			if err != nil {
				t.Fatalf("Matches() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestFilter_CompileErrors(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Error("expected error for empty expression")
	}
	if _, err := Compile("state =="); err == nil {
		t.Error("expected error for malformed expression")
	}
}

func TestFilter_NonBoolean(t *testing.T) {
	f, err := Compile(`stats.totalTasks`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Matches("3.0", testSummary()); err == nil {
		t.Error("expected error for non-boolean result")
	}
}

func TestFilter_ReusableAcrossSummaries(t *testing.T) {
	f, err := Compile(`state == "FAILED"`)
	if err != nil {
		t.Fatal(err)
	}

	failed := testSummary()
	finished := model.NewStageExecutionSummary(model.StageFinished, model.ZeroStageExecutionStats(1), nil, nil)

	for i := 0; i < 3; i++ {
		if got, err := f.Matches("3.0", failed); err != nil || !got {
			t.Errorf("iteration %d: failed summary = (%v, %v), want (true, nil)", i, got, err)
		}
		if got, err := f.Matches("1.0", finished); err != nil || got {
			t.Errorf("iteration %d: finished summary = (%v, %v), want (false, nil)", i, got, err)
		}
	}
}
