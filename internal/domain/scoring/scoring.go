// Package scoring holds the placement point tables used for meet scoring.
package scoring

// Table maps a 1-based placement to points. Index 0 is first place.
type Table struct {
	points []int
}

// Individual is the points table for individual events.
var Individual = newTable(20, 17, 16, 15, 14, 13, 12, 11, 9, 7, 6, 5, 4, 3, 2, 1)

// Relay is the points table for relays.
var Relay = newTable(40, 34, 32, 30, 28, 26, 24, 22, 20, 16, 12, 10, 8, 6, 4, 2)

func newTable(points ...int) Table {
	return Table{points: points}
}

// Points returns the points awarded for placement. Placements outside the
// table earn nothing.
func (t Table) Points(placement int) int {
	if placement < 1 || placement > len(t.points) {
		return 0
	}
	return t.points[placement-1]
}

// Len returns the number of scoring places.
func (t Table) Len() int { return len(t.points) }
