// Package metrics tracks what a single descriptor emission produced.
package metrics

import (
	"fmt"
	"time"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// EmitMetrics tracks timing and counters for one emission.
type EmitMetrics struct {
	StartTime    time.Time
	EndTime      time.Time
	AssembleTime time.Duration
	RenderTime   time.Duration

	Mode       models.BuildMode
	Format     string
	Rules      int
	Plugins    int
	Minimizers int
	Bytes      int
	Unchanged  bool
}

// NewEmitMetrics creates a new metrics instance.
func NewEmitMetrics() *EmitMetrics {
	return &EmitMetrics{
		StartTime: time.Now(),
	}
}

// RecordEnd marks the end of the emission.
func (m *EmitMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// TotalDuration returns the total emission duration.
func (m *EmitMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Observe copies descriptor counts into m.
func (m *EmitMetrics) Observe(d models.BuildDescriptor) {
	m.Mode = d.Mode
	m.Rules = len(d.Module.Rules)
	m.Plugins = len(d.Plugins)
	m.Minimizers = len(d.Optimization.Minimizer)
}

// String returns a single-line summary.
func (m *EmitMetrics) String() string {
	state := "written"
	if m.Unchanged {
		state = "unchanged"
	}
	return fmt.Sprintf("📊 %s %s descriptor in %v (%d rules, %d plugins, %d minimizers, %d bytes, %s)",
		m.Mode,
		m.Format,
		m.TotalDuration().Round(time.Microsecond),
		m.Rules,
		m.Plugins,
		m.Minimizers,
		m.Bytes,
		state,
	)
}

// Print outputs the metrics to stdout.
func (m *EmitMetrics) Print() {
	fmt.Println(m.String())
}
