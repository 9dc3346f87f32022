// Package tracker maintains the live, mutable state of stage executions on
// behalf of the aggregation core: the latest report per task, peak-memory
// high-water marks, stage-level runtime metrics, lifespan counters, and the
// stage state machine. Aggregation itself stays pure; the tracker's job is to
// hand it a consistent snapshot.
package tracker

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhibongale/presto/pkg/model"
	"github.com/abhibongale/presto/pkg/stage"
)

// Tracker holds every stage execution known to this process.
type Tracker struct {
	mu     sync.Mutex
	logger *slog.Logger
	stages map[string]*StageExecution
	order  []string
}

// New creates an empty tracker.
func New(logger *slog.Logger) *Tracker {
	return &Tracker{
		logger: logger.With("component", "tracker"),
		stages: make(map[string]*StageExecution),
	}
}

// Register creates tracking state for a new stage execution in PLANNED state.
// Registering the same execution twice is an error.
func (t *Tracker) Register(id model.StageExecutionID) (*StageExecution, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := id.String()
	if _, exists := t.stages[key]; exists {
		return nil, fmt.Errorf("stage execution %s already registered", key)
	}

	se := &StageExecution{
		id:                id,
		state:             model.StagePlanned,
		tasks:             make(map[string]int),
		splitDistribution: model.NewDistribution(),
		runtimeStats:      model.NewRuntimeStats(),
	}
	t.stages[key] = se
	t.order = append(t.order, key)
	t.logger.Info("stage registered", "stage_execution", key)
	return se, nil
}

// Get returns the stage execution with the given "stage.attempt" key, or nil.
func (t *Tracker) Get(key string) *StageExecution {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[key]
}

// List returns all tracked stage executions in registration order.
func (t *Tracker) List() []*StageExecution {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*StageExecution, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.stages[key])
	}
	return out
}

// StageExecution is the mutable, synchronized state of one stage execution.
// All methods are safe for concurrent use.
type StageExecution struct {
	mu sync.Mutex

	id      model.StageExecutionID
	state   model.StageExecutionState
	failure *model.ExecutionFailureInfo

	// Latest report per task, in first-seen order.
	tasks   map[string]int
	reports []model.TaskReport

	schedulingCompleteMillis int64
	splitDistribution        *model.Distribution
	runtimeStats             *model.RuntimeStats

	// High-water marks survive across task updates because task reports carry
	// current, not peak, usage.
	peakUserMemoryBytes      int64
	peakNodeTotalMemoryBytes int64

	completedLifespans int
	totalLifespans     int
}

// ID returns the stage execution identifier.
func (s *StageExecution) ID() model.StageExecutionID {
	return s.id
}

// State returns the current stage state.
func (s *StageExecution) State() model.StageExecutionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TransitionTo advances the stage state machine. failure may be non-nil only
// for a transition to FAILED.
func (s *StageExecution) TransitionTo(next model.StageExecutionState, failure *model.ExecutionFailureInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransitionTo(next) {
		return &model.InvalidTransitionError{StageExecution: s.id, From: s.state, To: next}
	}
	s.state = next
	if next == model.StageFailed {
		s.failure = failure
	}
	return nil
}

// RecordTaskReport stores the latest report for a task, replacing any earlier
// report from the same task, and raises the peak-memory watermarks from the
// new point-in-time reservations.
func (s *StageExecution) RecordTaskReport(report model.TaskReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.tasks[report.TaskID]; ok {
		s.reports[idx] = report
	} else {
		s.tasks[report.TaskID] = len(s.reports)
		s.reports = append(s.reports, report)
	}

	var userBytes, totalBytes int64
	for i := range s.reports {
		st := &s.reports[i].Stats
		userBytes += st.UserMemoryReservationBytes
		totalBytes += st.UserMemoryReservationBytes + st.SystemMemoryReservationBytes
	}
	if userBytes > s.peakUserMemoryBytes {
		s.peakUserMemoryBytes = userBytes
	}
	if totalBytes > s.peakNodeTotalMemoryBytes {
		s.peakNodeTotalMemoryBytes = totalBytes
	}
}

// TaskCount returns the number of distinct tasks seen so far.
func (s *StageExecution) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// RecordGetSplitTime adds one sample to the split-scheduling distribution.
func (s *StageExecution) RecordGetSplitTime(nanos int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.splitDistribution.Add(nanos)
}

// SetSchedulingComplete records the epoch-millis timestamp when split
// scheduling finished. Only the first call takes effect.
func (s *StageExecution) SetSchedulingComplete(millis int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedulingCompleteMillis == 0 {
		s.schedulingCompleteMillis = millis
	}
}

// SetLifespans updates the scheduler-maintained lifespan counters.
func (s *StageExecution) SetLifespans(completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedLifespans = completed
	s.totalLifespans = total
}

// AddStageMetric records a stage-level runtime metric sample, i.e. telemetry
// accrued outside of any task (scheduling overhead, planning time).
func (s *StageExecution) AddStageMetric(name string, unit model.RuntimeUnit, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runtimeStats.AddMetricValue(name, unit, value)
}

// Summary aggregates the current snapshot into an immutable summary. The
// snapshot is taken under the execution lock, so the two aggregation passes
// never observe a torn task list.
func (s *StageExecution) Summary() (*model.StageExecutionSummary, error) {
	s.mu.Lock()
	reports := make([]model.TaskReport, len(s.reports))
	copy(reports, s.reports)
	params := stage.Params{
		StageExecutionID:         s.id,
		State:                    s.state,
		FailureCause:             s.failure,
		TaskReports:              reports,
		SchedulingCompleteMillis: s.schedulingCompleteMillis,
		SplitDistribution:        s.splitDistribution.Snapshot(),
		StageRuntimeStats:        s.runtimeStats.Copy(),
		PeakUserMemoryBytes:      s.peakUserMemoryBytes,
		PeakNodeTotalMemoryBytes: s.peakNodeTotalMemoryBytes,
		CompletedLifespans:       s.completedLifespans,
		TotalLifespans:           s.totalLifespans,
	}
	s.mu.Unlock()

	return stage.Aggregate(params)
}
