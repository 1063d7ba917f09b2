// Package benchmark - Functionality for benchmarking the motion detection engine.
package benchmark

import "time"

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario      Scenario      `json:"scenario"`
	Timestamp     time.Time     `json:"timestamp"`
	TotalDuration time.Duration `json:"total_duration"`
	// AvgDuration is the mean time of one detection.
	AvgDuration         time.Duration `json:"avg_duration"`
	FramesPerSecond     float64       `json:"frames_per_second"`
	MegapixelsPerSecond float64       `json:"megapixels_per_second"`
	// MovingRatio is the moving fraction of the last mask produced.
	MovingRatio float64       `json:"moving_ratio"`
	MemoryStats MemoryMetrics `json:"memory_stats"`
	CPUStats    CPUMetrics    `json:"cpu_stats"`
	ErrorRate   float64       `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`
}
