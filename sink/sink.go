// Package sink provides the output side of the detector: files, display
// windows and a SQLite run store for difference maps and masks.
package sink

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/motion"
)

// Names under which WriteResult stores the four grids of a motion.Result.
const (
	NameDifference = "difference"
	NameFixed      = "fixed"
	NameOrder4     = "order4"
	NameOrder8     = "order8"
)

// Sink consumes named grids.
type Sink interface {
	// Write stores or displays one grid under name.
	Write(name string, g motion.Grid) error
	// Close releases the resources of the sink.
	Close() error
}

// WriteResult writes every grid of r to s.
func WriteResult(s Sink, r motion.Result) error {
	grids := []struct {
		name string
		grid motion.Grid
	}{
		{NameDifference, r.Difference.Grid},
		{NameFixed, r.Fixed.Grid},
		{NameOrder4, r.Order4.Grid},
		{NameOrder8, r.Order8.Grid},
	}
	for _, g := range grids {
		if err := s.Write(g.name, g.grid); err != nil {
			return errors.Wrapf(err, "write %s", g.name)
		}
	}
	return nil
}

type multi []Sink

// Multi fans every write out to all sinks, stopping at the first error.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Write(name string, g motion.Grid) error {
	for _, s := range m {
		if err := s.Write(name, g); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
