// Package motion - This package contains the two-frame motion detection engine
// built on a Markov Random Field (MRF) model of moving and static pixels.
//
// The ThresholdEngine compares two consecutive grayscale frames and classifies
// every pixel as moving (255) or static (0). Under a Gaussian assumption for
// both classes the binary hypothesis test reduces to:
//
//	diff² > 2·σs² · (ln(θ·σm/σs) + (Qs − Qm)/T)
//
// where σm = 5·σs, and Qs/Qm are the numbers of static and moving neighbours.
//
// Pipeline Overview:
//
// ┌──────────────────────┐
// │ Frame A, Frame B     │
// └──────┬───────────────┘
// ┌──────────────────────┐
// │ Absolute difference  │──────────────┐
// └──────┬───────────────┘              │
// ┌──────────────────────┐   ┌──────────────────────────────┐
// │ Fixed threshold      │   │ Adaptive threshold (4 or 8   │
// │ (T → ∞)              │   │ neighbours, N iterations)    │
// └──────────────────────┘   └──────────────────────────────┘
//
// Usage:
//
//	engine, err := motion.NewThresholdEngine(motion.DefaultParameters(), motion.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	mask, err := engine.VariableThreshold2(a, b, motion.DefaultIterations)
//	if errors.Is(err, motion.ErrDimensionMismatch) {
//	    // frames come from different sources
//	}
package motion
