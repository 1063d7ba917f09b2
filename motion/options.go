package motion

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SeedMode selects how the adaptive classifiers initialise their working mask.
type SeedMode string

const (
	// SeedDifference seeds the working mask with the raw difference
	// intensities. The first round therefore treats every non-zero
	// difference as a moving neighbour, even below threshold.
	SeedDifference SeedMode = "difference"
	// SeedFixedThreshold seeds the working mask with the fixed-threshold mask.
	SeedFixedThreshold SeedMode = "fixed"
)

// UpdateOrder selects how a round of the adaptive classifiers writes its results.
type UpdateOrder string

const (
	// UpdateInPlace writes every pixel back into the working mask as soon as
	// it is classified, scanning row-major. Later pixels of a round see the
	// values already written earlier in that round.
	UpdateInPlace UpdateOrder = "in-place"
	// UpdateSynchronous double-buffers the working mask: every pixel of a
	// round reads the previous round only. Results differ from UpdateInPlace.
	UpdateSynchronous UpdateOrder = "synchronous"
)

// ParseSeedMode converts a flag or config value into a SeedMode.
func ParseSeedMode(s string) (SeedMode, error) {
	switch m := SeedMode(s); m {
	case SeedDifference, SeedFixedThreshold:
		return m, nil
	case "":
		return SeedDifference, nil
	}
	return "", errors.Errorf("unknown seed mode %q (want %q or %q)", s, SeedDifference, SeedFixedThreshold)
}

// ParseUpdateOrder converts a flag or config value into an UpdateOrder.
func ParseUpdateOrder(s string) (UpdateOrder, error) {
	switch u := UpdateOrder(s); u {
	case UpdateInPlace, UpdateSynchronous:
		return u, nil
	case "":
		return UpdateInPlace, nil
	}
	return "", errors.Errorf("unknown update order %q (want %q or %q)", s, UpdateInPlace, UpdateSynchronous)
}

// Options tunes how a ThresholdEngine runs. None of them change the model.
type Options struct {
	// Seed selects the initial working mask of the adaptive classifiers.
	Seed SeedMode
	// Update selects in-place or double-buffered adaptive rounds.
	Update UpdateOrder
	// Parallel splits row-independent passes across goroutines. In-place
	// adaptive rounds always run serially.
	Parallel bool
	// Logger receives debug output. Nil discards it.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the default execution options:
// difference seeding, in-place updates, serial execution.
func DefaultOptions() Options {
	return Options{
		Seed:   SeedDifference,
		Update: UpdateInPlace,
	}
}

func (o Options) withDefaults() (Options, error) {
	var err error
	if o.Seed, err = ParseSeedMode(string(o.Seed)); err != nil {
		return o, errors.Wrap(ErrInvalidParameters, err.Error())
	}
	if o.Update, err = ParseUpdateOrder(string(o.Update)); err != nil {
		return o, errors.Wrap(ErrInvalidParameters, err.Error())
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o, nil
}
