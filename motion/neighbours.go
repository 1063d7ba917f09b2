package motion

import "fmt"

// Order selects the MRF neighbourhood.
type Order int

const (
	// Order4 is the first-order neighbourhood: the four axis-aligned cells.
	Order4 Order = 4
	// Order8 is the second-order neighbourhood: all eight surrounding cells.
	Order8 Order = 8
)

// String implements fmt.Stringer.
func (o Order) String() string {
	switch o {
	case Order4:
		return "order4"
	case Order8:
		return "order8"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// Valid reports whether o is Order4 or Order8.
func (o Order) Valid() bool {
	return o == Order4 || o == Order8
}

type offset struct{ dr, dc int }

var neighbourhoods = map[Order][]offset{
	Order4: {{-1, 0}, {0, -1}, {0, 1}, {1, 0}},
	Order8: {{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}},
}

// NeighbourCount holds the number of static (Qs) and moving (Qm) neighbours
// of one pixel.
type NeighbourCount struct {
	Qs int
	Qm int
}

// Total returns Qs+Qm, the number of in-bounds neighbours.
func (n NeighbourCount) Total() int {
	return n.Qs + n.Qm
}

// CountNeighbours classifies the in-bounds neighbours of (row, col) in g.
// Any non-zero cell counts as moving, zero counts as static. Neighbours
// outside the grid are skipped, so border pixels simply see fewer of them.
//
// Arguments:
//   - g: The working mask (or seed) to read.
//   - row, col: An in-bounds coordinate.
//   - order: Order4 or Order8. Any other value counts nothing.
//
// Returns:
//   - NeighbourCount: Qs and Qm, with Qs+Qm <= order.
func CountNeighbours(g Grid, row, col int, order Order) NeighbourCount {
	var n NeighbourCount
	for _, o := range neighbourhoods[order] {
		r, c := row+o.dr, col+o.dc
		if !g.In(r, c) {
			continue
		}
		if g.At(r, c) != 0 {
			n.Qm++
		} else {
			n.Qs++
		}
	}
	return n
}
