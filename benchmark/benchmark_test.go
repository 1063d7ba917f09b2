package benchmark

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/motion"
)

func TestNewSuite(t *testing.T) {
	outputDir := t.TempDir()

	suite := NewSuite(outputDir, nil)

	assert.NotNil(t, suite)
	assert.Equal(t, outputDir, suite.outputDir)
	assert.NotNil(t, suite.log)
	assert.Empty(t, suite.scenarios)
	assert.Empty(t, suite.results)
}

func TestScenarioBuilder(t *testing.T) {
	scenario := NewScenarioBuilder("test_scenario").
		WithResolution(320, 240).
		WithOrder(motion.Order4).
		WithIterations(3).
		WithSeed(motion.SeedFixedThreshold).
		WithUpdate(motion.UpdateSynchronous).
		WithParallel(true).
		WithRuns(50).
		WithWarmupRuns(5).
		Build()

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, Resolution{Width: 320, Height: 240, Name: "320x240"}, scenario.Resolution)
	assert.Equal(t, motion.Order4, scenario.Order)
	assert.Equal(t, motion.DefaultParameters(), scenario.Parameters)
	assert.Equal(t, 3, scenario.Iterations)
	assert.Equal(t, motion.SeedFixedThreshold, scenario.Seed)
	assert.Equal(t, motion.UpdateSynchronous, scenario.Update)
	assert.True(t, scenario.Parallel)
	assert.Equal(t, 50, scenario.Runs)
	assert.Equal(t, 5, scenario.WarmupRuns)
}

func TestAddScenario(t *testing.T) {
	suite := NewSuite(t.TempDir(), nil)

	scenario := NewScenarioBuilder("test").
		WithResolution(32, 24).
		Build()

	suite.AddScenario(scenario)

	require.Len(t, suite.Scenarios(), 1)
	assert.Equal(t, scenario, suite.Scenarios()[0])
}

func TestPredefinedScenarios(t *testing.T) {
	predefined := &PredefinedScenarios{}

	quick := predefined.GetQuickScenarios()
	assert.Len(t, quick.Scenarios, 4)
	assert.Equal(t, "Quick Performance Test", quick.Name)

	resolution := predefined.GetResolutionComparisonScenarios(motion.Order8)
	assert.Len(t, resolution.Scenarios, len(CommonResolutions))
	assert.Contains(t, resolution.Name, "Resolution Comparison")
	assert.Equal(t, "CIF", resolution.Scenarios[1].Resolution.Name)

	execution := predefined.GetExecutionComparisonScenarios(CommonResolutions[0])
	assert.Len(t, execution.Scenarios, 4)
	assert.True(t, strings.HasSuffix(execution.Scenarios[1].Name, "_parallel"))

	sweep := predefined.GetIterationSweepScenarios(CommonResolutions[0], []int{0, 1, 5, 10})
	require.Len(t, sweep.Scenarios, 4)
	assert.Equal(t, 10, sweep.Scenarios[3].Iterations)
}

func TestScenarioSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.json")
	set := (&PredefinedScenarios{}).GetQuickScenarios()

	require.NoError(t, SaveScenarioSet(set, path))
	loaded, err := LoadScenarioSet(path)
	require.NoError(t, err)
	assert.Equal(t, set, loaded)
}

func TestScenarioSetRoundTripInfiniteTemperature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.json")
	params := motion.DefaultParameters()
	params.T = math.Inf(1)
	set := &ScenarioSet{
		Name:      "no-neighbourhood",
		Scenarios: []Scenario{NewScenarioBuilder("inf").WithParameters(params).Build()},
	}

	require.NoError(t, SaveScenarioSet(set, path))
	loaded, err := LoadScenarioSet(path)
	require.NoError(t, err)
	require.Len(t, loaded.Scenarios, 1)
	assert.True(t, math.IsInf(loaded.Scenarios[0].Parameters.T, 1))
	assert.Equal(t, set, loaded)
}

func TestSyntheticPair(t *testing.T) {
	a, b, err := SyntheticPair(64, 48, 4, 1.22, 7)
	require.NoError(t, err)
	assert.Equal(t, 64, a.Width)
	assert.Equal(t, 48, b.Height)
	assert.NotEqual(t, a.Pix, b.Pix)

	again, _, err := SyntheticPair(64, 48, 4, 1.22, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, again.Pix)

	_, _, err = SyntheticPair(0, 48, 4, 1.22, 7)
	assert.ErrorIs(t, err, motion.ErrInvalidFrame)
}

func TestRunScenario(t *testing.T) {
	suite := NewSuite(t.TempDir(), nil)
	scenario := NewScenarioBuilder("tiny").
		WithResolution(32, 24).
		WithOrder(motion.Order8).
		WithRuns(3).
		WithWarmupRuns(1).
		Build()

	metrics, err := suite.RunScenario(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, scenario, metrics.Scenario)
	assert.Zero(t, metrics.ErrorRate)
	assert.Greater(t, metrics.MovingRatio, 0.0)
	assert.Less(t, metrics.MovingRatio, 1.0)
	assert.Positive(t, metrics.CPUStats.NumCPU)
}

func TestRunScenarioRejectsBadScenarios(t *testing.T) {
	suite := NewSuite(t.TempDir(), nil)

	tests := []struct {
		name     string
		scenario Scenario
	}{
		{"no runs", NewScenarioBuilder("x").WithRuns(0).Build()},
		{"bad order", NewScenarioBuilder("x").WithOrder(motion.Order(6)).Build()},
		{"bad parameters", NewScenarioBuilder("x").WithParameters(motion.Parameters{}).Build()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := suite.RunScenario(context.Background(), tt.scenario)
			assert.Error(t, err)
		})
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	suite := NewSuite(t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.RunScenario(ctx, NewScenarioBuilder("x").WithResolution(8, 8).WithWarmupRuns(0).Build())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAllScenariosSavesResults(t *testing.T) {
	outputDir := t.TempDir()
	suite := NewSuite(outputDir, nil)
	suite.AddScenario(NewScenarioBuilder("all").WithResolution(16, 16).WithRuns(2).WithWarmupRuns(0).Build())
	suite.AddScenario(NewScenarioBuilder("broken").WithRuns(0).Build())

	require.NoError(t, suite.RunAllScenarios(context.Background()))

	results := suite.GetResults()
	require.Len(t, results, 1)
	assert.Equal(t, "all", results[0].Scenario.Name)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var csvName string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".csv") {
			csvName = e.Name()
		}
	}
	require.NotEmpty(t, csvName)
	data, err := os.ReadFile(filepath.Join(outputDir, csvName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "all,16x16,all,5,in-place,false,"))
}

func TestSaveResultsInfiniteTemperature(t *testing.T) {
	outputDir := t.TempDir()
	params := motion.DefaultParameters()
	params.T = math.Inf(1)

	suite := NewSuite(outputDir, nil)
	suite.AddScenario(NewScenarioBuilder("inf").
		WithResolution(16, 16).
		WithOrder(motion.Order4).
		WithParameters(params).
		WithRuns(1).
		WithWarmupRuns(0).
		Build())

	require.NoError(t, suite.RunAllScenarios(context.Background()))
	require.Len(t, suite.GetResults(), 1)

	resultsFile, _, err := suite.SaveResults()
	require.NoError(t, err)
	data, err := os.ReadFile(resultsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"temperature": "inf"`)

	var results []PerformanceMetrics
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.True(t, math.IsInf(results[0].Scenario.Parameters.T, 1))
}

func BenchmarkScenarioBuilder(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewScenarioBuilder("test").
			WithResolution(416, 416).
			WithOrder(motion.Order8).
			WithIterations(5).
			Build()
	}
}
