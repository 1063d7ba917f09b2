package motion

import "gonum.org/v1/gonum/stat"

// DifferenceStats describes the distribution of a difference map.
type DifferenceStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Max    uint8   `json:"max"`
}

// Summary condenses a Result into a few numbers for logs and run records.
type Summary struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Difference DifferenceStats `json:"difference"`
	// Moving ratios per classifier, in [0, 1].
	Fixed  float64 `json:"fixed"`
	Order4 float64 `json:"order4"`
	Order8 float64 `json:"order8"`
}

// SummarizeDifference computes the mean, sample standard deviation and
// maximum of a difference map.
func SummarizeDifference(d DifferenceMap) DifferenceStats {
	if len(d.Pix) == 0 {
		return DifferenceStats{}
	}
	values := make([]float64, len(d.Pix))
	var peak uint8
	for i, v := range d.Pix {
		values[i] = float64(v)
		peak = max(peak, v)
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return DifferenceStats{Mean: mean, StdDev: std, Max: peak}
}

// Summary summarises every grid of the result.
func (r Result) Summary() Summary {
	return Summary{
		Width:      r.Difference.Width,
		Height:     r.Difference.Height,
		Difference: SummarizeDifference(r.Difference),
		Fixed:      r.Fixed.MovingRatio(),
		Order4:     r.Order4.MovingRatio(),
		Order8:     r.Order8.MovingRatio(),
	}
}
