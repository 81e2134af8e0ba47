// Package selection implements the gate that admits two contestants into a match.
package selection

import (
	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
)

// Capacity is the number of contestants a match needs.
const Capacity = 2

// Result reports what Select did.
type Result int

const (
	Added Result = iota
	Duplicate
	Full
)

func (r Result) String() string {
	switch r {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// Gate holds an ordered selection of up to two distinct contestants.
// The zero value is an empty gate.
type Gate struct {
	picked []roster.Contestant
}

// Select adds c unless it is already selected or the gate is full.
func (g *Gate) Select(c roster.Contestant) Result {
	for _, p := range g.picked {
		if p.ID == c.ID {
			return Duplicate
		}
	}
	if len(g.picked) >= Capacity {
		return Full
	}
	g.picked = append(g.picked, c)
	return Added
}

// Selected returns the selection in pick order.
func (g *Gate) Selected() []roster.Contestant {
	return append([]roster.Contestant(nil), g.picked...)
}

// Len returns the number of selected contestants.
func (g *Gate) Len() int {
	return len(g.picked)
}

// Ready reports whether a match can start.
func (g *Gate) Ready() bool {
	return len(g.picked) == Capacity
}

// Pair returns the two contestants once the gate is ready.
func (g *Gate) Pair() (a, b roster.Contestant, ok bool) {
	if !g.Ready() {
		return roster.Contestant{}, roster.Contestant{}, false
	}
	return g.picked[0], g.picked[1], true
}

// Clear empties the selection.
func (g *Gate) Clear() {
	g.picked = nil
}
