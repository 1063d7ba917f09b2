// Package profiler times detector operations and reports them with memory
// usage through a logrus logger.
package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMaxSamples bounds the durations kept per operation.
const DefaultMaxSamples = 600

// OperationStats summarises the recorded durations of one operation.
//
// Count, Min and Max cover every sample ever recorded. Samples, WindowTotal
// and Avg cover only the most recent samples the profiler keeps.
type OperationStats struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	// Samples is the number of durations in the window.
	Samples     int           `json:"samples"`
	WindowTotal time.Duration `json:"window_total"`
	// Avg is WindowTotal / Samples.
	Avg time.Duration `json:"avg"`
	Min time.Duration `json:"min"`
	Max time.Duration `json:"max"`
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	durations []time.Duration
	// totalTime is the sum of durations.
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

func (t *TimeTracker) stats() OperationStats {
	s := OperationStats{
		Name:        t.name,
		Count:       t.count,
		Samples:     len(t.durations),
		WindowTotal: t.totalTime,
		Min:         t.minTime,
		Max:         t.maxTime,
	}
	if s.Samples > 0 {
		s.Avg = t.totalTime / time.Duration(s.Samples)
	}
	return s
}

// Profiler records how long named operations take. It is safe for
// concurrent use.
type Profiler struct {
	mu             sync.Mutex
	startTime      time.Time
	maxSamples     int
	operationTimes map[string]*TimeTracker
}

// New creates a profiler keeping at most maxSamples durations per operation.
// A non-positive maxSamples uses DefaultMaxSamples.
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Profiler{
		startTime:      time.Now(),
		maxSamples:     maxSamples,
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one duration for name.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// Stats returns the statistics of every operation, sorted by name.
func (p *Profiler) Stats() []OperationStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make([]OperationStats, 0, len(p.operationTimes))
	for _, tracker := range p.operationTimes {
		stats = append(stats, tracker.stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Operation returns the statistics of one operation.
func (p *Profiler) Operation(name string) (OperationStats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, ok := p.operationTimes[name]
	if !ok {
		return OperationStats{}, false
	}
	return tracker.stats(), true
}

// Report logs one line per operation and one line of memory usage.
func (p *Profiler) Report(log logrus.FieldLogger) {
	for _, s := range p.Stats() {
		log.WithFields(logrus.Fields{
			"operation": s.Name,
			"count":     s.Count,
			"avg":       s.Avg.Truncate(time.Microsecond),
			"min":       s.Min.Truncate(time.Microsecond),
			"max":       s.Max.Truncate(time.Microsecond),
		}).Info("operation timing")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	log.WithFields(logrus.Fields{
		"uptime":     time.Since(p.startTime).Truncate(time.Millisecond),
		"goroutines": runtime.NumGoroutine(),
		"alloc":      formatBytes(mem.Alloc),
		"heap_alloc": formatBytes(mem.HeapAlloc),
		"sys":        formatBytes(mem.Sys),
		"gc_cycles":  mem.NumGC,
	}).Info("memory usage")
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
