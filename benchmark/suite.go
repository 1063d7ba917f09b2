package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-mrf/motion"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	log       logrus.FieldLogger

	// Noise and shift of the synthetic frame pairs.
	sigma float64
	shift int

	mu      sync.RWMutex
	results []PerformanceMetrics
}

// NewSuite creates a new benchmark suite writing its results to outputDir.
// A nil logger discards output.
func NewSuite(outputDir string, logger logrus.FieldLogger) *Suite {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Suite{
		outputDir: outputDir,
		log:       logger,
		sigma:     motion.DefaultParameters().SigmaS,
		shift:     4,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of a set
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, scenario := range set.Scenarios {
		bs.AddScenario(scenario)
	}
}

// Scenarios returns the configured scenarios
func (bs *Suite) Scenarios() []Scenario {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	return scenarios
}

// RunScenario executes a single benchmark scenario. It stops early, with the
// context error, when ctx is cancelled.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Runs <= 0 {
		return nil, errors.Errorf("scenario %s: runs must be positive", scenario.Name)
	}
	if scenario.Order != 0 && !scenario.Order.Valid() {
		return nil, errors.Wrapf(motion.ErrInvalidParameters, "scenario %s: order %d", scenario.Name, int(scenario.Order))
	}
	engine, err := motion.NewThresholdEngine(scenario.Parameters, motion.Options{
		Seed:     scenario.Seed,
		Update:   scenario.Update,
		Parallel: scenario.Parallel,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	a, b, err := SyntheticPair(scenario.Resolution.Width, scenario.Resolution.Height, bs.shift, bs.sigma, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := bs.detect(engine, a, b, scenario); err != nil {
			continue // Skip warmup errors
		}
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	startTime := time.Now()
	failures := 0
	var mask motion.Mask

	for i := 0; i < scenario.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := bs.detect(engine, a, b, scenario)
		if err != nil {
			failures++
			continue
		}
		mask = m
	}

	totalDuration := time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	pixels := float64(scenario.Resolution.Width * scenario.Resolution.Height)
	metrics.TotalDuration = totalDuration
	metrics.AvgDuration = totalDuration / time.Duration(scenario.Runs)
	if seconds := totalDuration.Seconds(); seconds > 0 {
		metrics.FramesPerSecond = float64(scenario.Runs) / seconds
		metrics.MegapixelsPerSecond = metrics.FramesPerSecond * pixels / 1e6
	}
	if mask.Pix != nil {
		metrics.MovingRatio = mask.MovingRatio()
	}
	metrics.ErrorRate = float64(failures) / float64(scenario.Runs)

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	metrics.CPUStats = CPUMetrics{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return metrics, nil
}

// detect runs the classifier a scenario names and returns its mask. With no
// order every classifier runs and the 8-neighbour mask is returned.
func (bs *Suite) detect(engine *motion.ThresholdEngine, a, b motion.Frame, scenario Scenario) (motion.Mask, error) {
	if scenario.Order == 0 {
		r, err := engine.Detect(a, b, scenario.Iterations)
		if err != nil {
			return motion.Mask{}, err
		}
		return r.Order8, nil
	}
	return engine.VariableThreshold(a, b, scenario.Order, scenario.Iterations)
}

// RunAllScenarios executes all configured benchmark scenarios and saves the
// results. A failing scenario is logged and skipped.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	for _, scenario := range bs.Scenarios() {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			bs.log.WithError(err).WithField("scenario", scenario.Name).Error("scenario failed")
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.log.WithFields(logrus.Fields{
			"scenario": scenario.Name,
			"fps":      metrics.FramesPerSecond,
			"mpx_s":    metrics.MegapixelsPerSecond,
			"moving":   metrics.MovingRatio,
		}).Info("scenario completed")
	}

	_, _, err := bs.SaveResults()
	return err
}

// SaveResults persists benchmark results to the output directory as JSON
// and a CSV summary, returning both paths.
func (bs *Suite) SaveResults() (string, string, error) {
	results := bs.GetResults()

	// Ensure output directory exists
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal results")
	}

	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", "", errors.Wrap(err, "failed to save summary CSV")
	}

	bs.log.WithFields(logrus.Fields{
		"results": resultsFile,
		"summary": summaryFile,
	}).Info("benchmark results saved")

	return resultsFile, summaryFile, nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"Scenario", "Resolution", "Order", "Iterations", "Update", "Parallel",
		"FPS", "MPx_per_s", "Avg_Duration_ms", "Alloc_MB", "Moving_Ratio", "Error_Rate",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		s := result.Scenario
		order := "all"
		if s.Order != 0 {
			order = s.Order.String()
		}
		row := []string{
			s.Name,
			s.Resolution.Name,
			order,
			strconv.Itoa(s.Iterations),
			string(s.Update),
			strconv.FormatBool(s.Parallel),
			strconv.FormatFloat(result.FramesPerSecond, 'f', 2, 64),
			strconv.FormatFloat(result.MegapixelsPerSecond, 'f', 2, 64),
			strconv.FormatFloat(float64(result.AvgDuration.Nanoseconds())/1e6, 'f', 3, 64),
			strconv.FormatFloat(float64(result.MemoryStats.TotalAllocBytes)/(1024*1024), 'f', 2, 64),
			strconv.FormatFloat(result.MovingRatio, 'f', 4, 64),
			strconv.FormatFloat(result.ErrorRate, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
