package observability

import "time"

// Timer measures one operation and reports it through Metrics when stopped.
type Timer struct {
	metrics Metrics
	name    string
	tags    []Tag
	start   time.Time
}

// StartTimer starts timing an operation recorded under name.
func StartTimer(metrics Metrics, name string, tags ...Tag) *Timer {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Timer{metrics: metrics, name: name, tags: tags, start: time.Now()}
}

// Stop records and returns the elapsed time. Extra tags are appended to
// those given at start, e.g. an outcome known only at the end.
func (t *Timer) Stop(extra ...Tag) time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.Timing(t.name, elapsed, append(append([]Tag(nil), t.tags...), extra...)...)
	return elapsed
}
