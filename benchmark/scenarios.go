package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/motion"
)

// Resolution represents frame dimensions for benchmarking
type Resolution struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Common resolutions for benchmarking
var CommonResolutions = []Resolution{
	{Width: 176, Height: 144, Name: "QCIF"},
	{Width: 352, Height: 288, Name: "CIF"},
	{Width: 640, Height: 480, Name: "VGA"},
	{Width: 1280, Height: 720, Name: "720p"},
}

// Scenario defines a specific engine configuration to time.
type Scenario struct {
	Name       string     `json:"name"`
	Resolution Resolution `json:"resolution"`
	// Order selects VariableThreshold1 (4) or VariableThreshold2 (8). Zero
	// runs Detect, which computes all four results.
	Order      motion.Order       `json:"order"`
	Parameters motion.Parameters  `json:"parameters"`
	Iterations int                `json:"iterations"`
	Seed       motion.SeedMode    `json:"seed"`
	Update     motion.UpdateOrder `json:"update"`
	Parallel   bool               `json:"parallel"`
	// Runs is the number of timed detections, WarmupRuns the untimed ones
	// before them.
	Runs       int `json:"runs"`
	WarmupRuns int `json:"warmup_runs"`
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder
func NewScenarioBuilder(name string) *ScenarioBuilder {
	opts := motion.DefaultOptions()
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Resolution: CommonResolutions[1],
			Parameters: motion.DefaultParameters(),
			Iterations: motion.DefaultIterations,
			Seed:       opts.Seed,
			Update:     opts.Update,
			Runs:       100,
			WarmupRuns: 10,
		},
	}
}

// WithResolution sets the frame size
func (sb *ScenarioBuilder) WithResolution(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = Resolution{
		Width:  width,
		Height: height,
		Name:   fmt.Sprintf("%dx%d", width, height),
	}
	return sb
}

// WithOrder sets the neighbourhood order, zero for all classifiers
func (sb *ScenarioBuilder) WithOrder(order motion.Order) *ScenarioBuilder {
	sb.scenario.Order = order
	return sb
}

// WithParameters sets the MRF parameters
func (sb *ScenarioBuilder) WithParameters(params motion.Parameters) *ScenarioBuilder {
	sb.scenario.Parameters = params
	return sb
}

// WithIterations sets the number of adaptive rounds
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithSeed sets the adaptive seed mode
func (sb *ScenarioBuilder) WithSeed(seed motion.SeedMode) *ScenarioBuilder {
	sb.scenario.Seed = seed
	return sb
}

// WithUpdate sets the round update order
func (sb *ScenarioBuilder) WithUpdate(update motion.UpdateOrder) *ScenarioBuilder {
	sb.scenario.Update = update
	return sb
}

// WithParallel enables row-parallel passes
func (sb *ScenarioBuilder) WithParallel(parallel bool) *ScenarioBuilder {
	sb.scenario.Parallel = parallel
	return sb
}

// WithRuns sets the number of timed detections
func (sb *ScenarioBuilder) WithRuns(runs int) *ScenarioBuilder {
	sb.scenario.Runs = runs
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// PredefinedScenarios contains common benchmark scenario sets
type PredefinedScenarios struct{}

// GetQuickScenarios returns a smaller set for quick testing
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0)

	for _, resolution := range CommonResolutions[:2] {
		for _, order := range []motion.Order{motion.Order4, motion.Order8} {
			scenario := NewScenarioBuilder(fmt.Sprintf("quick_%s_%s", resolution.Name, order)).
				WithResolution(resolution.Width, resolution.Height).
				WithOrder(order).
				WithRuns(20).
				WithWarmupRuns(2).
				Build()
			scenario.Resolution.Name = resolution.Name

			scenarios = append(scenarios, scenario)
		}
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Both neighbourhood orders at small resolutions",
		Scenarios:   scenarios,
	}
}

// GetResolutionComparisonScenarios times one order across all common resolutions
func (ps *PredefinedScenarios) GetResolutionComparisonScenarios(order motion.Order) *ScenarioSet {
	scenarios := make([]Scenario, 0)

	for _, resolution := range CommonResolutions {
		scenario := NewScenarioBuilder(fmt.Sprintf("resolution_%s_%s", order, resolution.Name)).
			WithResolution(resolution.Width, resolution.Height).
			WithOrder(order).
			Build()
		scenario.Resolution.Name = resolution.Name

		scenarios = append(scenarios, scenario)
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Resolution Comparison - %s", order),
		Description: fmt.Sprintf("Compares frame sizes for the %s classifier", order),
		Scenarios:   scenarios,
	}
}

// GetExecutionComparisonScenarios compares update orders with and without
// parallel passes at one resolution.
func (ps *PredefinedScenarios) GetExecutionComparisonScenarios(resolution Resolution) *ScenarioSet {
	scenarios := make([]Scenario, 0)

	for _, update := range []motion.UpdateOrder{motion.UpdateInPlace, motion.UpdateSynchronous} {
		for _, parallel := range []bool{false, true} {
			name := fmt.Sprintf("execution_%s_%s", resolution.Name, update)
			if parallel {
				name += "_parallel"
			}
			scenario := NewScenarioBuilder(name).
				WithResolution(resolution.Width, resolution.Height).
				WithUpdate(update).
				WithParallel(parallel).
				Build()
			scenario.Resolution.Name = resolution.Name

			scenarios = append(scenarios, scenario)
		}
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Execution Comparison @ %s", resolution.Name),
		Description: "Compares in-place and synchronous rounds, serial and row-parallel",
		Scenarios:   scenarios,
	}
}

// GetIterationSweepScenarios times the 8-neighbour classifier for each round count.
func (ps *PredefinedScenarios) GetIterationSweepScenarios(resolution Resolution, counts []int) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(counts))

	for _, n := range counts {
		scenario := NewScenarioBuilder(fmt.Sprintf("iterations_%s_%d", resolution.Name, n)).
			WithResolution(resolution.Width, resolution.Height).
			WithOrder(motion.Order8).
			WithIterations(n).
			Build()
		scenario.Resolution.Name = resolution.Name

		scenarios = append(scenarios, scenario)
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Iteration Sweep @ %s", resolution.Name),
		Description: "Cost of additional adaptive rounds",
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	return &scenarioSet, nil
}
