// Package roster loads and validates the fixed set of contestants.
//
// Every contestant in a Roster exposes the same attribute keys, so any
// attribute sampled for a round can be read from both sides.
package roster

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/troxeldj/greek-god-arena/pkg/logger"
)

// minContestants is the smallest roster a match can be played from.
const minContestants = 2

// Contestant is an immutable roster entry.
type Contestant struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Image      string             `json:"image"`
	Attributes map[string]float64 `json:"attributes"`
}

// Value returns the contestant's value for attr.
func (c Contestant) Value(attr string) (float64, bool) {
	v, ok := c.Attributes[attr]
	return v, ok
}

// AttributeNames returns the attribute keys in sorted order.
func (c Contestant) AttributeNames() []string {
	return slices.Sorted(maps.Keys(c.Attributes))
}

// clone returns a copy that shares no map with c.
func (c Contestant) clone() Contestant {
	c.Attributes = maps.Clone(c.Attributes)
	return c
}

// Roster is a validated, read-only contestant list.
type Roster struct {
	contestants []Contestant
	byID        map[string]int
	attributes  []string
}

// Skipped describes a roster entry rejected during validation.
type Skipped struct {
	Index int
	ID    string
	Err   error
}

// New validates entries and builds a Roster. Malformed entries are skipped
// and reported; the call fails only if fewer than two entries survive.
func New(entries []Contestant) (*Roster, []Skipped, error) {
	r := &Roster{byID: make(map[string]int, len(entries))}
	var skipped []Skipped

	for i, c := range entries {
		if err := r.validate(c); err != nil {
			skipped = append(skipped, Skipped{Index: i, ID: c.ID, Err: err})
			continue
		}
		if r.attributes == nil {
			r.attributes = c.AttributeNames()
		}
		r.byID[c.ID] = len(r.contestants)
		r.contestants = append(r.contestants, c.clone())
	}

	if len(r.contestants) < minContestants {
		return nil, skipped, fmt.Errorf("%w: %d valid contestants", ErrTooSmall, len(r.contestants))
	}
	return r, skipped, nil
}

func (r *Roster) validate(c Contestant) error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidContestant)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: %s: missing name", ErrInvalidContestant, c.ID)
	case len(c.Attributes) == 0:
		return fmt.Errorf("%w: %s: no attributes", ErrInvalidContestant, c.ID)
	}
	for name, v := range c.Attributes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s: attribute %s is not finite", ErrInvalidContestant, c.ID, name)
		}
	}
	if _, dup := r.byID[c.ID]; dup {
		return fmt.Errorf("%w: %s: duplicate id", ErrInvalidContestant, c.ID)
	}
	if r.attributes != nil && !slices.Equal(r.attributes, c.AttributeNames()) {
		return fmt.Errorf("%w: %s: attributes %v differ from %v",
			ErrInvalidContestant, c.ID, c.AttributeNames(), r.attributes)
	}
	return nil
}

// Contestants returns a copy of all contestants in roster order.
func (r *Roster) Contestants() []Contestant {
	out := make([]Contestant, len(r.contestants))
	for i, c := range r.contestants {
		out[i] = c.clone()
	}
	return out
}

// Get looks up a contestant by id.
func (r *Roster) Get(id string) (Contestant, error) {
	i, ok := r.byID[id]
	if !ok {
		return Contestant{}, fmt.Errorf("%w: %s", ErrUnknownContestant, id)
	}
	return r.contestants[i].clone(), nil
}

// Attributes returns the attribute keys shared by every contestant.
func (r *Roster) Attributes() []string {
	return slices.Clone(r.attributes)
}

// Len returns the number of contestants.
func (r *Roster) Len() int {
	return len(r.contestants)
}

// LogSkipped reports skipped entries as warnings.
func LogSkipped(ctx context.Context, log logger.Logger, skipped []Skipped) {
	if log == nil {
		return
	}
	for _, s := range skipped {
		log.Warn(ctx, "skipping roster entry",
			logger.Int("index", s.Index),
			logger.String("id", s.ID),
			logger.Error(s.Err),
		)
	}
}
