package model

import "encoding/json"

// RuntimeUnit is the unit of a runtime metric's values.
type RuntimeUnit string

const (
	RuntimeUnitNone  RuntimeUnit = "NONE"
	RuntimeUnitNanos RuntimeUnit = "NANO"
	RuntimeUnitBytes RuntimeUnit = "BYTE"
)

// Derived metric names synthesized during stage aggregation. These identifiers
// are part of the external contract; dashboards key off them.
const (
	MetricDriverCountPerTask     = "driverCountPerTask"
	MetricTaskElapsedTimeNanos   = "taskElapsedTimeNanos"
	MetricTaskQueuedTimeNanos    = "taskQueuedTimeNanos"
	MetricTaskScheduledTimeNanos = "taskScheduledTimeNanos"
	MetricTaskBlockedTimeNanos   = "taskBlockedTimeNanos"
)

// RuntimeMetric is one named series of numeric samples: a sum, a sample count,
// and the min/max sample seen so far.
type RuntimeMetric struct {
	Name  string      `json:"name"`
	Unit  RuntimeUnit `json:"unit,omitempty"`
	Sum   int64       `json:"sum"`
	Count int64       `json:"count"`
	Max   int64       `json:"max"`
	Min   int64       `json:"min"`
}

// addValue records one sample.
func (m *RuntimeMetric) addValue(v int64) {
	if m.Count == 0 {
		m.Max = v
		m.Min = v
	} else {
		if v > m.Max {
			m.Max = v
		}
		if v < m.Min {
			m.Min = v
		}
	}
	m.Sum += v
	m.Count++
}

// mergeWith folds another metric's samples into this one.
func (m *RuntimeMetric) mergeWith(other *RuntimeMetric) {
	if other == nil || other.Count == 0 {
		return
	}
	if m.Count == 0 {
		m.Max = other.Max
		m.Min = other.Min
	} else {
		if other.Max > m.Max {
			m.Max = other.Max
		}
		if other.Min < m.Min {
			m.Min = other.Min
		}
	}
	m.Sum += other.Sum
	m.Count += other.Count
}

// RuntimeStats is a named, mergeable collection of numeric samples used for
// operational telemetry beyond the fixed statistics fields. The zero value is
// not usable; create instances with NewRuntimeStats. RuntimeStats is not safe
// for concurrent use; the owner synchronizes access.
type RuntimeStats struct {
	metrics map[string]*RuntimeMetric
}

// NewRuntimeStats creates an empty accumulator.
func NewRuntimeStats() *RuntimeStats {
	return &RuntimeStats{metrics: make(map[string]*RuntimeMetric)}
}

// Metric returns the metric registered under name, or nil.
func (r *RuntimeStats) Metric(name string) *RuntimeMetric {
	if r == nil {
		return nil
	}
	return r.metrics[name]
}

// Metrics returns the metric names currently present.
func (r *RuntimeStats) Metrics() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	return names
}

// Len returns the number of distinct metrics.
func (r *RuntimeStats) Len() int {
	if r == nil {
		return 0
	}
	return len(r.metrics)
}

func (r *RuntimeStats) metric(name string, unit RuntimeUnit) *RuntimeMetric {
	m, ok := r.metrics[name]
	if !ok {
		m = &RuntimeMetric{Name: name, Unit: unit}
		r.metrics[name] = m
	}
	return m
}

// AddMetricValue records one sample under name.
func (r *RuntimeStats) AddMetricValue(name string, unit RuntimeUnit, value int64) {
	r.metric(name, unit).addValue(value)
}

// AddMetricValueIgnoreZero records one sample under name, skipping zero values
// so that optional timings do not drag distribution views toward zero.
func (r *RuntimeStats) AddMetricValueIgnoreZero(name string, unit RuntimeUnit, value int64) {
	if value == 0 {
		return
	}
	r.AddMetricValue(name, unit, value)
}

// Merge folds all of other's metrics into this accumulator. other is not
// modified.
func (r *RuntimeStats) Merge(other *RuntimeStats) {
	if other == nil {
		return
	}
	for name, om := range other.metrics {
		r.metric(name, om.Unit).mergeWith(om)
	}
}

// Copy returns a deep copy.
func (r *RuntimeStats) Copy() *RuntimeStats {
	cp := NewRuntimeStats()
	cp.Merge(r)
	return cp
}

// MarshalJSON serializes the accumulator as a name-keyed object, the stable
// wire shape consumed by monitoring UIs.
func (r *RuntimeStats) MarshalJSON() ([]byte, error) {
	if r == nil || r.metrics == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.metrics)
}

// UnmarshalJSON restores an accumulator from its name-keyed object form.
func (r *RuntimeStats) UnmarshalJSON(data []byte) error {
	metrics := make(map[string]*RuntimeMetric)
	if err := json.Unmarshal(data, &metrics); err != nil {
		return err
	}
	for name, m := range metrics {
		if m.Name == "" {
			m.Name = name
		}
	}
	r.metrics = metrics
	return nil
}

// Equal reports whether two accumulators hold identical metrics. Used by
// idempotence checks in tests.
func (r *RuntimeStats) Equal(other *RuntimeStats) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r == nil || other == nil {
		return r.Len() == other.Len()
	}
	for name, m := range r.metrics {
		om, ok := other.metrics[name]
		if !ok || *m != *om {
			return false
		}
	}
	return true
}
