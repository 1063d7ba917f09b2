// Command mrfdetect runs two-frame MRF motion detection on a pair of images
// or on every consecutive pair of a frame directory.
//
//	mrfdetect -a frame_001.png -b frame_002.png -out masks
//	mrfdetect -dir sequence/ -config mrf.yaml -db runs.db
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
	"github.com/nvr-ai/go-mrf/profiler"
	"github.com/nvr-ai/go-mrf/sink"
	"github.com/nvr-ai/go-mrf/util"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitMismatch = 2
)

type settings struct {
	previous   string
	next       string
	dir        string
	configPath string

	theta       float64
	sigmaS      float64
	temperature float64
	iterations  int
	seed        string
	update      string
	parallel    bool

	fit   bool
	scale float64

	out   string
	ext   string
	db    string
	show  bool
	debug bool

	// set holds the names of the flags given on the command line.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (settings, error) {
	var s settings
	defaults := motion.DefaultConfig()

	fs := flag.NewFlagSet("mrfdetect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&s.previous, "a", "", "frame at time t_k")
	fs.StringVar(&s.next, "b", "", "frame at time t_k+1")
	fs.StringVar(&s.dir, "dir", "", "directory of numbered frames; every consecutive pair is processed")
	fs.StringVar(&s.configPath, "config", "", "YAML config file")
	fs.Float64Var(&s.theta, "theta", defaults.Theta, "prior ratio of static to moving pixels")
	fs.Float64Var(&s.sigmaS, "sigma-s", defaults.SigmaS, "noise standard deviation of static pixels")
	fs.Float64Var(&s.temperature, "temperature", defaults.T, "MRF temperature, 'inf' disables the neighbourhood term")
	fs.IntVar(&s.iterations, "iterations", defaults.Iterations, "adaptive rounds")
	fs.StringVar(&s.seed, "seed", string(defaults.Seed), "adaptive seed: difference or fixed")
	fs.StringVar(&s.update, "update", string(defaults.Update), "round update order: in-place or synchronous")
	fs.BoolVar(&s.parallel, "parallel", defaults.Parallel, "split passes across CPUs")
	fs.BoolVar(&s.fit, "fit", false, "resize frame B to the size of frame A")
	fs.Float64Var(&s.scale, "scale", 1, "resize both frames by this factor before detection")
	fs.StringVar(&s.out, "out", "", "directory to write difference maps and masks to")
	fs.StringVar(&s.ext, "ext", ".png", "image extension for -out")
	fs.StringVar(&s.db, "db", "", "SQLite database to record runs in")
	fs.BoolVar(&s.show, "show", false, "display results in windows")
	fs.BoolVar(&s.debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}

	s.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { s.set[f.Name] = true })

	switch {
	case s.dir != "" && (s.previous != "" || s.next != ""):
		return settings{}, errors.New("-dir cannot be combined with -a/-b")
	case s.dir == "" && (s.previous == "" || s.next == ""):
		return settings{}, errors.New("either -dir or both -a and -b are required")
	}
	return s, nil
}

// config loads the config file, if any, and applies the flags given on the
// command line on top of it.
func (s settings) config() (motion.Config, error) {
	cfg := motion.DefaultConfig()
	if s.configPath != "" {
		var err error
		if cfg, err = motion.LoadConfig(s.configPath); err != nil {
			return motion.Config{}, err
		}
	}

	if s.set["theta"] {
		cfg.Theta = s.theta
	}
	if s.set["sigma-s"] {
		cfg.SigmaS = s.sigmaS
	}
	if s.set["temperature"] {
		cfg.T = s.temperature
	}
	if s.set["iterations"] {
		cfg.Iterations = s.iterations
	}
	if s.set["seed"] {
		seed, err := motion.ParseSeedMode(s.seed)
		if err != nil {
			return motion.Config{}, err
		}
		cfg.Seed = seed
	}
	if s.set["update"] {
		update, err := motion.ParseUpdateOrder(s.update)
		if err != nil {
			return motion.Config{}, err
		}
		cfg.Update = update
	}
	if s.set["parallel"] {
		cfg.Parallel = s.parallel
	}
	return cfg, nil
}

func (s settings) pairs() ([]util.Pair, error) {
	if s.dir != "" {
		files, err := util.LoadDirectoryImageFiles(s.dir)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", s.dir)
		}
		pairs := util.Pairs(files)
		if len(pairs) == 0 {
			return nil, errors.Errorf("%s holds fewer than two frames", s.dir)
		}
		return pairs, nil
	}

	previous, err := util.LoadImageFile(s.previous)
	if err != nil {
		return nil, err
	}
	next, err := util.LoadImageFile(s.next)
	if err != nil {
		return nil, err
	}
	return []util.Pair{{Previous: previous, Next: next}}, nil
}

// initLogger creates and configures the logger
func initLogger(debugMode bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

type detector struct {
	cfg      motion.Config
	engine   *motion.ThresholdEngine
	log      logrus.FieldLogger
	profiler *profiler.Profiler
	store    *sink.Store
	window   *sink.WindowSink
	s        settings
}

func (d *detector) frames(p util.Pair) (motion.Frame, motion.Frame, error) {
	defer d.profiler.StartOperation("decode")()

	a, err := p.Previous.Decode()
	if err != nil {
		return motion.Frame{}, motion.Frame{}, err
	}
	next := p.Next
	if !d.s.fit {
		// Without -fit the second frame must match the first.
		next.Width, next.Height = a.Width, a.Height
	}
	b, err := next.Decode()
	if err != nil {
		return motion.Frame{}, motion.Frame{}, err
	}
	if d.s.fit {
		if b, err = images.FitTo(b, a.Width, a.Height); err != nil {
			return motion.Frame{}, motion.Frame{}, err
		}
	}
	if d.s.scale != 1 {
		if a, err = images.Scale(a, d.s.scale); err != nil {
			return motion.Frame{}, motion.Frame{}, err
		}
		if b, err = images.Scale(b, d.s.scale); err != nil {
			return motion.Frame{}, motion.Frame{}, err
		}
	}
	return a, b, nil
}

// detect runs the four classifiers one by one so each gets its own timing.
func (d *detector) detect(a, b motion.Frame) (motion.Result, error) {
	var (
		r   motion.Result
		err error
	)

	done := d.profiler.StartOperation("abs_difference")
	r.Difference, err = d.engine.AbsDifference(a, b)
	done()
	if err != nil {
		return motion.Result{}, err
	}

	done = d.profiler.StartOperation("fixed_threshold")
	r.Fixed, err = d.engine.FixedThreshold(a, b)
	done()
	if err != nil {
		return motion.Result{}, err
	}

	done = d.profiler.StartOperation("variable_threshold1")
	r.Order4, err = d.engine.VariableThreshold1(a, b, d.cfg.Iterations)
	done()
	if err != nil {
		return motion.Result{}, err
	}

	done = d.profiler.StartOperation("variable_threshold2")
	r.Order8, err = d.engine.VariableThreshold2(a, b, d.cfg.Iterations)
	done()
	if err != nil {
		return motion.Result{}, err
	}
	return r, nil
}

func (d *detector) process(index int, p util.Pair, batch bool) error {
	log := d.log.WithFields(logrus.Fields{
		"previous": p.Previous.Path,
		"next":     p.Next.Path,
	})

	a, b, err := d.frames(p)
	if err != nil {
		return err
	}
	result, err := d.detect(a, b)
	if err != nil {
		return errors.Wrapf(err, "%s vs %s", p.Previous.Path, p.Next.Path)
	}

	run := sink.Run{
		ID:         uuid.New().String(),
		Previous:   p.Previous.Path,
		Next:       p.Next.Path,
		Parameters: d.cfg.Parameters,
		Iterations: d.cfg.Iterations,
		Seed:       d.cfg.Seed,
		Update:     d.cfg.Update,
		Summary:    result.Summary(),
	}
	log.WithFields(logrus.Fields{
		"run":        run.ID,
		"width":      run.Summary.Width,
		"height":     run.Summary.Height,
		"mean_diff":  run.Summary.Difference.Mean,
		"max_diff":   run.Summary.Difference.Max,
		"fixed":      run.Summary.Fixed,
		"order4":     run.Summary.Order4,
		"order8":     run.Summary.Order8,
		"order8_md5": images.ComputeChecksum(result.Order8.Grid),
	}).Info("motion detected")

	if d.s.out != "" {
		prefix := ""
		if batch {
			prefix = fmt.Sprintf("pair%03d_", index+1)
		}
		files, err := sink.NewFileSink(d.s.out, prefix, d.s.ext, log)
		if err != nil {
			return err
		}
		if err := sink.WriteResult(files, result); err != nil {
			return err
		}
	}
	if d.store != nil {
		if _, err := d.store.Record(run, result); err != nil {
			return errors.Wrap(err, "record run")
		}
	}
	if d.window != nil {
		if err := sink.WriteResult(d.window, result); err != nil {
			return err
		}
		d.window.Wait()
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	s, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	logger := initLogger(s.debug, stdout)

	cfg, err := s.config()
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		return exitFailure
	}
	opts := cfg.Options()
	opts.Logger = logger
	engine, err := motion.NewThresholdEngine(cfg.Parameters, opts)
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		return exitFailure
	}
	logger.WithFields(logrus.Fields{
		"theta":       cfg.Theta,
		"sigma_s":     cfg.SigmaS,
		"temperature": temperatureField(cfg.T),
		"iterations":  cfg.Iterations,
		"seed":        cfg.Seed,
		"update":      cfg.Update,
		"parallel":    cfg.Parallel,
	}).Debug("engine configured")

	pairs, err := s.pairs()
	if err != nil {
		logger.WithError(err).Error("failed to load frames")
		return exitFailure
	}

	d := &detector{
		cfg:      cfg,
		engine:   engine,
		log:      logger,
		profiler: profiler.New(0),
		s:        s,
	}
	if s.db != "" {
		if err := os.MkdirAll(filepath.Dir(s.db), 0o755); err != nil {
			logger.WithError(err).Error("failed to create database directory")
			return exitFailure
		}
		if d.store, err = sink.NewStore(s.db); err != nil {
			logger.WithError(err).Error("failed to open run store")
			return exitFailure
		}
		defer d.store.Close()
	}
	if s.show {
		d.window = sink.NewWindowSink()
		defer d.window.Close()
	}

	code := exitOK
	for i, p := range pairs {
		if err := d.process(i, p, len(pairs) > 1); err != nil {
			logger.WithError(err).Error("detection failed")
			if errors.Is(err, motion.ErrDimensionMismatch) {
				code = exitMismatch
				continue
			}
			if code == exitOK {
				code = exitFailure
			}
		}
	}

	d.profiler.Report(logger)
	return code
}

func temperatureField(t float64) string {
	if math.IsInf(t, 1) {
		return "inf"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", t), "0"), ".")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
