package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-mrf/benchmark"
	"github.com/nvr-ai/go-mrf/motion"
)

func main() {
	var (
		scenarioFile = flag.String("scenarios", "", "Path to scenario configuration file")
		saveFile     = flag.String("save-scenarios", "", "Write the selected scenarios to this file and exit")
		outputDir    = flag.String("output", "./benchmark_results", "Output directory for results")
		quick        = flag.Bool("quick", false, "Run quick benchmark scenarios")
		resolutions  = flag.Bool("resolutions", false, "Compare frame resolutions")
		execution    = flag.Bool("execution", false, "Compare update orders and parallel passes")
		sweep        = flag.String("iterations", "", "Comma separated round counts to sweep, e.g. 0,1,5,10")
		timeout      = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
		debug        = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stdout)
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	suite := benchmark.NewSuite(*outputDir, log)
	predefined := &benchmark.PredefinedScenarios{}
	cif := benchmark.CommonResolutions[1]

	if *scenarioFile != "" {
		scenarioSet, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			log.WithError(err).Fatal("failed to load scenario file")
		}
		suite.AddScenarioSet(scenarioSet)
		log.Infof("Loaded %d scenarios from %s", len(scenarioSet.Scenarios), *scenarioFile)
	} else {
		if *quick {
			suite.AddScenarioSet(predefined.GetQuickScenarios())
		}

		if *resolutions {
			for _, order := range []motion.Order{motion.Order4, motion.Order8} {
				suite.AddScenarioSet(predefined.GetResolutionComparisonScenarios(order))
			}
		}

		if *execution {
			suite.AddScenarioSet(predefined.GetExecutionComparisonScenarios(cif))
		}

		if *sweep != "" {
			counts, err := parseCounts(*sweep)
			if err != nil {
				log.WithError(err).Fatal("invalid -iterations")
			}
			suite.AddScenarioSet(predefined.GetIterationSweepScenarios(cif, counts))
		}

		// If no specific scenarios requested, use quick by default
		if !*quick && !*resolutions && !*execution && *sweep == "" {
			suite.AddScenarioSet(predefined.GetQuickScenarios())
		}
	}

	if *saveFile != "" {
		set := &benchmark.ScenarioSet{
			Name:      "Saved scenarios",
			Scenarios: suite.Scenarios(),
		}
		if err := benchmark.SaveScenarioSet(set, *saveFile); err != nil {
			log.WithError(err).Fatal("failed to save scenarios")
		}
		log.Infof("Saved %d scenarios to %s", len(set.Scenarios), *saveFile)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Infof("Starting %d benchmark scenarios", len(suite.Scenarios()))
	start := time.Now()

	if err := suite.RunAllScenarios(ctx); err != nil {
		log.WithError(err).Fatal("benchmark execution failed")
	}

	log.Infof("Benchmark completed in %v", time.Since(start).Truncate(time.Millisecond))

	var bestFPS float64
	var bestScenario string
	for _, result := range suite.GetResults() {
		if result.FramesPerSecond > bestFPS {
			bestFPS = result.FramesPerSecond
			bestScenario = result.Scenario.Name
		}
	}
	log.WithFields(logrus.Fields{
		"scenario": bestScenario,
		"fps":      bestFPS,
	}).Info("best performing scenario")
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Benchmark tool for MRF motion detection throughput.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -quick\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -resolutions -execution -output ./results\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  %s -iterations 0,1,5,10,20\n", filepath.Base(os.Args[0]))
	}
}
