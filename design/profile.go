/*
Copyright © 2026 the Verkenning authors.
This file is part of Verkenning.

Verkenning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Verkenning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Verkenning.  If not, see <http://www.gnu.org/licenses/>.
*/

package design

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrEmptyReferenceLine is returned when the reference line has fewer
	// than two distinct vertices.
	ErrEmptyReferenceLine = errors.New("design: reference line needs at least two distinct vertices")

	// ErrEmptyProfile is returned when a profile has no usable rows.
	ErrEmptyProfile = errors.New("design: profile has no rows with a distance")

	// ErrNoOffsets is returned when no offset line could be generated.
	ErrNoOffsets = errors.New("design: no offset lines could be generated")
)

// Rivierzijde indicates on which side of the reference line, looking in
// the drawing direction, the river lies.
type Rivierzijde string

// The two river sides.
const (
	Rechts Rivierzijde = "rechts"
	Links  Rivierzijde = "links"
)

// ParseRivierzijde parses a river side name.
func ParseRivierzijde(s string) (Rivierzijde, error) {
	switch r := Rivierzijde(strings.ToLower(strings.TrimSpace(s))); r {
	case Rechts, Links:
		return r, nil
	default:
		return "", fmt.Errorf("design: invalid rivierzijde %q; it must be %q or %q", s, Rechts, Links)
	}
}

// Distance is a signed lateral distance from the reference line in meters.
type Distance float64

// ProfileRow is a named station of the cross-section profile.
type ProfileRow struct {
	// Locatie is the station name, for example "buitenkruin". It may be nil.
	Locatie *string `json:"locatie" toml:"locatie"`

	// Afstand is the signed lateral distance in meters. A nil distance
	// marks an incomplete row, which is skipped.
	Afstand *float64 `json:"afstand" toml:"afstand"`

	// Hoogte is the design elevation in meters.
	Hoogte float64 `json:"hoogte" toml:"hoogte"`
}

// Name returns the station name, or a placeholder for unnamed rows.
func (r ProfileRow) Name() string {
	if r.Locatie == nil || *r.Locatie == "" {
		return "(naamloos)"
	}
	return *r.Locatie
}

// Profile is the cross-section profile table.
type Profile []ProfileRow

// Sorted returns the rows that have a distance, sorted by distance.
func (p Profile) Sorted() Profile {
	o := make(Profile, 0, len(p))
	for _, r := range p {
		if r.Afstand != nil && !math.IsNaN(*r.Afstand) {
			o = append(o, r)
		}
	}
	sort.SliceStable(o, func(i, j int) bool { return *o[i].Afstand < *o[j].Afstand })
	return o
}

// Validate checks that the profile has usable rows and that no two rows
// share a distance.
func (p Profile) Validate() error {
	s := p.Sorted()
	if len(s) == 0 {
		return ErrEmptyProfile
	}
	for i := 1; i < len(s); i++ {
		if *s[i].Afstand == *s[i-1].Afstand {
			return fmt.Errorf("design: profile rows %s and %s share distance %g",
				s[i-1].Name(), s[i].Name(), *s[i].Afstand)
		}
	}
	return nil
}

// Talud is the slope between two adjacent profile stations.
type Talud struct {
	From, To string
	// Ratio is the horizontal run per unit of vertical rise (1:Ratio).
	// It is +Inf where the height does not change.
	Ratio float64
}

// Taluds returns the slopes between adjacent rows of the sorted profile.
func Taluds(p Profile) []Talud {
	s := p.Sorted()
	if len(s) < 2 {
		return nil
	}
	o := make([]Talud, len(s)-1)
	for i := 1; i < len(s); i++ {
		dx := math.Abs(*s[i].Afstand - *s[i-1].Afstand)
		dz := math.Abs(s[i].Hoogte - s[i-1].Hoogte)
		r := math.Inf(1)
		if dz != 0 {
			r = dx / dz
		}
		o[i-1] = Talud{From: s[i-1].Name(), To: s[i].Name(), Ratio: r}
	}
	return o
}

// OffsetGeometry is an offset line of the reference line at a distance,
// with the station's elevation on every vertex.
type OffsetGeometry struct {
	Distance Distance
	Line     Line
}

// OffsetSet holds offset lines keyed by distance. Call Sort before relying
// on the order.
type OffsetSet []OffsetGeometry

// Sort orders the set by increasing distance.
func (s OffsetSet) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Distance < s[j].Distance })
}

// Get returns the offset line at distance d.
func (s OffsetSet) Get(d Distance) (Line, bool) {
	for _, g := range s {
		if g.Distance == d {
			return g.Line, true
		}
	}
	return nil, false
}

// Distances returns the keys of the set in their current order.
func (s OffsetSet) Distances() []Distance {
	o := make([]Distance, len(s))
	for i, g := range s {
		o[i] = g.Distance
	}
	return o
}

// Pairs returns the adjacent pairs of a sorted copy of the set.
func (s OffsetSet) Pairs() [][2]OffsetGeometry {
	c := make(OffsetSet, len(s))
	copy(c, s)
	c.Sort()
	if len(c) < 2 {
		return nil
	}
	o := make([][2]OffsetGeometry, len(c)-1)
	for i := 1; i < len(c); i++ {
		o[i-1] = [2]OffsetGeometry{c[i-1], c[i]}
	}
	return o
}
