package tracker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/abhibongale/presto/internal/logging"
	"github.com/abhibongale/presto/pkg/model"
)

func newTestTracker() *Tracker {
	return New(logging.Nop())
}

func report(taskID string, state model.TaskState, userMem int64) model.TaskReport {
	return model.TaskReport{
		TaskID: taskID,
		Status: model.TaskStatus{State: state},
		Stats:  model.TaskStats{UserMemoryReservationBytes: userMem},
	}
}

func TestTracker_RegisterDuplicate(t *testing.T) {
	tr := newTestTracker()
	id := model.StageExecutionID{StageID: 1, ID: 0}

	if _, err := tr.Register(id); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if _, err := tr.Register(id); err == nil {
		t.Error("expected error registering the same execution twice")
	}
}

func TestTracker_GetAndList(t *testing.T) {
	tr := newTestTracker()
	for i := 0; i < 3; i++ {
		if _, err := tr.Register(model.StageExecutionID{StageID: i, ID: 0}); err != nil {
			t.Fatal(err)
		}
	}

	if got := tr.Get("1.0"); got == nil || got.ID().StageID != 1 {
		t.Errorf("Get(1.0) = %v", got)
	}
	if got := tr.Get("9.9"); got != nil {
		t.Errorf("Get(9.9) = %v, want nil", got)
	}

	list := tr.List()
	if len(list) != 3 {
		t.Fatalf("List() = %d entries, want 3", len(list))
	}
	for i, se := range list {
		if se.ID().StageID != i {
			t.Errorf("List()[%d].StageID = %d, want %d (registration order)", i, se.ID().StageID, i)
		}
	}
}

func TestStageExecution_Transitions(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	steps := []model.StageExecutionState{
		model.StageScheduling, model.StageScheduled, model.StageRunning, model.StageFinished,
	}
	for _, next := range steps {
		if err := se.TransitionTo(next, nil); err != nil {
			t.Fatalf("TransitionTo(%s) error: %v", next, err)
		}
	}
	if se.State() != model.StageFinished {
		t.Errorf("State() = %s, want FINISHED", se.State())
	}

	// Terminal states reject further transitions.
	if err := se.TransitionTo(model.StageRunning, nil); err == nil {
		t.Error("expected error transitioning out of FINISHED")
	}
}

func TestStageExecution_FailureCause(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	failure := &model.ExecutionFailureInfo{Type: "PageTransportTimeoutException", Message: "worker gone"}
	if err := se.TransitionTo(model.StageFailed, failure); err != nil {
		t.Fatal(err)
	}

	summary, err := se.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if summary.State != model.StageFailed {
		t.Errorf("State = %s, want FAILED", summary.State)
	}
	if summary.FailureCause == nil || summary.FailureCause.Message != "worker gone" {
		t.Errorf("FailureCause = %+v", summary.FailureCause)
	}
}

func TestStageExecution_TaskReportUpsert(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	se.RecordTaskReport(report("t0", model.TaskStateRunning, 10))
	se.RecordTaskReport(report("t1", model.TaskStateRunning, 20))
	se.RecordTaskReport(report("t0", model.TaskStateFinished, 0)) // update, not append

	if se.TaskCount() != 2 {
		t.Fatalf("TaskCount() = %d, want 2", se.TaskCount())
	}

	summary, err := se.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Stats.CompletedTasks != 1 || summary.Stats.RunningTasks != 1 {
		t.Errorf("completed/running = %d/%d, want 1/1",
			summary.Stats.CompletedTasks, summary.Stats.RunningTasks)
	}
	// The updated report replaced the original in place (order preserved).
	if summary.Tasks[0].TaskID != "t0" || summary.Tasks[0].Status.State != model.TaskStateFinished {
		t.Errorf("Tasks[0] = %+v", summary.Tasks[0])
	}
}

func TestStageExecution_PeakMemoryWatermark(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	se.RecordTaskReport(report("t0", model.TaskStateRunning, 100))
	se.RecordTaskReport(report("t1", model.TaskStateRunning, 200))
	// t0 releases its memory; the watermark must not drop.
	se.RecordTaskReport(report("t0", model.TaskStateFinished, 0))

	summary, err := se.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Stats.PeakUserMemoryReservationBytes != 300 {
		t.Errorf("PeakUserMemoryReservation = %d, want 300",
			summary.Stats.PeakUserMemoryReservationBytes)
	}
	if summary.Stats.UserMemoryReservationBytes != 200 {
		t.Errorf("current UserMemoryReservation = %d, want 200",
			summary.Stats.UserMemoryReservationBytes)
	}
}

func TestStageExecution_SchedulingCompleteSticky(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	se.SetSchedulingComplete(1000)
	se.SetSchedulingComplete(2000) // ignored

	summary, err := se.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Stats.SchedulingCompleteMillis != 1000 {
		t.Errorf("SchedulingCompleteMillis = %d, want 1000", summary.Stats.SchedulingCompleteMillis)
	}
}

func TestStageExecution_StageMetricsAndSplits(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	se.AddStageMetric("schedulingWallNanos", model.RuntimeUnitNanos, 500)
	se.RecordGetSplitTime(10)
	se.RecordGetSplitTime(30)
	se.SetLifespans(2, 5)

	summary, err := se.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if m := summary.Stats.RuntimeStats.Metric("schedulingWallNanos"); m == nil || m.Sum != 500 {
		t.Errorf("stage metric = %+v", m)
	}
	if summary.Stats.GetSplitDistribution.Count != 2 || summary.Stats.GetSplitDistribution.Max != 30 {
		t.Errorf("split distribution = %+v", summary.Stats.GetSplitDistribution)
	}
	if summary.Stats.CompletedLifespans != 2 || summary.Stats.TotalLifespans != 5 {
		t.Errorf("lifespans = %d/%d, want 2/5",
			summary.Stats.CompletedLifespans, summary.Stats.TotalLifespans)
	}
}

func TestStageExecution_ConcurrentReports(t *testing.T) {
	tr := newTestTracker()
	se, _ := tr.Register(model.StageExecutionID{StageID: 0, ID: 0})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				se.RecordTaskReport(report(fmt.Sprintf("t%d", w), model.TaskStateRunning, int64(i)))
				if _, err := se.Summary(); err != nil {
					t.Errorf("Summary() error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if se.TaskCount() != 8 {
		t.Errorf("TaskCount() = %d, want 8", se.TaskCount())
	}
}
