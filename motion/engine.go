package motion

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultIterations is the default number of adaptive rounds.
const DefaultIterations = 5

// maxOrder bounds Qs−Qm to [-8, 8].
const maxOrder = int(Order8)

// ThresholdEngine classifies the pixels of a frame pair as moving or static.
//
// An engine holds no per-call state: every operation allocates its own
// DifferenceMap and Mask, so one engine can serve concurrent callers.
type ThresholdEngine struct {
	params Parameters
	opts   Options
	log    logrus.FieldLogger

	// fixed is the global threshold of FixedThreshold.
	fixed float64
	// local[qs-qm+maxOrder] is the adaptive threshold for that neighbour balance.
	local [2*maxOrder + 1]float64
}

// NewThresholdEngine creates an engine for the given model parameters.
//
// Arguments:
//   - params: θ, σs and T. They cannot change for the lifetime of the engine.
//   - opts: Execution options, see DefaultOptions.
//
// Returns:
//   - *ThresholdEngine: The engine.
//   - error: ErrInvalidParameters if a threshold would not be finite.
//
// @example
// engine, err := NewThresholdEngine(DefaultParameters(), DefaultOptions())
// if err != nil {
//     log.Fatal(err)
// }
// mask, err := engine.FixedThreshold(a, b)
func NewThresholdEngine(params Parameters, opts Options) (*ThresholdEngine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	e := &ThresholdEngine{
		params: params,
		opts:   opts,
		log:    opts.Logger,
		fixed:  params.FixedThreshold(),
	}
	for balance := -maxOrder; balance <= maxOrder; balance++ {
		// Qs−Qm is all LocalThreshold depends on.
		n := NeighbourCount{Qs: max(balance, 0), Qm: max(-balance, 0)}
		e.local[balance+maxOrder] = params.LocalThreshold(n)
	}
	return e, nil
}

// Parameters returns the model parameters of the engine.
func (e *ThresholdEngine) Parameters() Parameters {
	return e.params
}

// Options returns the execution options of the engine, defaults applied.
func (e *ThresholdEngine) Options() Options {
	return e.opts
}

// AbsDifference returns the per-pixel absolute difference |b−a|.
//
// Arguments:
//   - a: Frame at time t_k.
//   - b: Frame at time t_k+1.
//
// Returns:
//   - DifferenceMap: Same dimensions as the frames.
//   - error: ErrDimensionMismatch if the frames differ in size.
func (e *ThresholdEngine) AbsDifference(a, b Frame) (DifferenceMap, error) {
	if err := checkDimensions(a, b); err != nil {
		return DifferenceMap{}, err
	}
	return e.difference(a, b), nil
}

// FixedThreshold classifies every pixel against the single global threshold
// 2·σs²·ln(θ·σm/σs): a pixel is moving iff its squared difference exceeds it.
func (e *ThresholdEngine) FixedThreshold(a, b Frame) (Mask, error) {
	if err := checkDimensions(a, b); err != nil {
		return Mask{}, err
	}
	return e.fixedMask(e.difference(a, b)), nil
}

// VariableThreshold1 runs the adaptive classifier on the first-order (4
// neighbour) MRF.
func (e *ThresholdEngine) VariableThreshold1(a, b Frame, iterations int) (Mask, error) {
	return e.VariableThreshold(a, b, Order4, iterations)
}

// VariableThreshold2 runs the adaptive classifier on the second-order (8
// neighbour) MRF.
func (e *ThresholdEngine) VariableThreshold2(a, b Frame, iterations int) (Mask, error) {
	return e.VariableThreshold(a, b, Order8, iterations)
}

// VariableThreshold runs the adaptive MRF classifier for the given
// neighbourhood order.
//
// The working mask is seeded (see Options.Seed), then refined for exactly
// iterations rounds. Each round visits the pixels row-major, counts the
// static and moving neighbours on the working mask, and compares the squared
// value of the original difference map against
// 2·σs²·(ln(θ·σm/σs) + (Qs−Qm)/T). There is no convergence check.
//
// With iterations <= 0 no round runs and the seed is returned binarised:
// every non-zero seed cell becomes Moving.
//
// Returns:
//   - Mask: The refined mask.
//   - error: ErrDimensionMismatch if the frames differ in size,
//     ErrInvalidParameters for an order other than Order4 or Order8.
func (e *ThresholdEngine) VariableThreshold(a, b Frame, order Order, iterations int) (Mask, error) {
	if !order.Valid() {
		return Mask{}, errors.Wrapf(ErrInvalidParameters, "unsupported neighbourhood %v", order)
	}
	if err := checkDimensions(a, b); err != nil {
		return Mask{}, err
	}
	return e.adaptive(e.difference(a, b), order, iterations), nil
}

// Result bundles the outputs of all four operations for one frame pair.
type Result struct {
	Difference DifferenceMap
	Fixed      Mask
	Order4     Mask
	Order8     Mask
}

// Detect runs every classifier on one frame pair, sharing a single
// difference map between them.
func (e *ThresholdEngine) Detect(a, b Frame, iterations int) (Result, error) {
	if err := checkDimensions(a, b); err != nil {
		return Result{}, err
	}
	diff := e.difference(a, b)
	return Result{
		Difference: diff,
		Fixed:      e.fixedMask(diff),
		Order4:     e.adaptive(diff, Order4, iterations),
		Order8:     e.adaptive(diff, Order8, iterations),
	}, nil
}

func (e *ThresholdEngine) difference(a, b Frame) DifferenceMap {
	g := newGrid(a.Width, a.Height)
	e.rows(a.Height, func(start, end int) {
		for i := start * a.Width; i < end*a.Width; i++ {
			g.Pix[i] = absDiff(a.Pix[i], b.Pix[i])
		}
	})
	return DifferenceMap{Grid: g}
}

func (e *ThresholdEngine) fixedMask(diff DifferenceMap) Mask {
	e.log.WithField("threshold", e.fixed).Debug("fixed threshold")

	g := newGrid(diff.Width, diff.Height)
	e.rows(diff.Height, func(start, end int) {
		for i := start * diff.Width; i < end*diff.Width; i++ {
			g.Pix[i] = classify(diff.Pix[i], e.fixed)
		}
	})
	return Mask{Grid: g}
}

func (e *ThresholdEngine) adaptive(diff DifferenceMap, order Order, iterations int) Mask {
	work := e.seed(diff)

	for round := 0; round < iterations; round++ {
		if e.opts.Update == UpdateSynchronous {
			work = e.synchronousRound(diff, work, order)
		} else {
			e.inPlaceRound(diff, work, order)
		}
		e.log.WithFields(logrus.Fields{
			"order":  order,
			"round":  round + 1,
			"moving": Mask{Grid: work}.CountMoving(),
		}).Debug("adaptive round")
	}

	if iterations <= 0 {
		for i, v := range work.Pix {
			if v != Static {
				work.Pix[i] = Moving
			}
		}
	}
	return Mask{Grid: work}
}

func (e *ThresholdEngine) seed(diff DifferenceMap) Grid {
	if e.opts.Seed == SeedFixedThreshold {
		return e.fixedMask(diff).Grid
	}
	return diff.Clone()
}

// inPlaceRound overwrites work cell by cell in row-major order.
func (e *ThresholdEngine) inPlaceRound(diff DifferenceMap, work Grid, order Order) {
	for row := 0; row < work.Height; row++ {
		for col := 0; col < work.Width; col++ {
			n := CountNeighbours(work, row, col, order)
			work.set(row, col, classify(diff.At(row, col), e.localThreshold(n)))
		}
	}
}

// synchronousRound reads prev only and returns a fresh grid.
func (e *ThresholdEngine) synchronousRound(diff DifferenceMap, prev Grid, order Order) Grid {
	next := newGrid(prev.Width, prev.Height)
	e.rows(prev.Height, func(start, end int) {
		for row := start; row < end; row++ {
			for col := 0; col < prev.Width; col++ {
				n := CountNeighbours(prev, row, col, order)
				next.set(row, col, classify(diff.At(row, col), e.localThreshold(n)))
			}
		}
	})
	return next
}

func (e *ThresholdEngine) localThreshold(n NeighbourCount) float64 {
	return e.local[n.Qs-n.Qm+maxOrder]
}

func (e *ThresholdEngine) rows(height int, fn func(start, end int)) {
	if e.opts.Parallel {
		Parallel(height, fn)
		return
	}
	fn(0, height)
}

// classify compares the squared difference against threshold.
func classify(v uint8, threshold float64) uint8 {
	psi := float64(v) * float64(v)
	if psi > threshold {
		return Moving
	}
	return Static
}

func absDiff(x, y uint8) uint8 {
	if x > y {
		return x - y
	}
	return y - x
}
