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

// Package design generates a 3D dike surface by sweeping a cross-section
// profile along a reference line, and computes its earthwork volumes.
//
// All geometry passed to and returned from this package is in the display
// frame of the Designer's Projector unless stated otherwise. Offsetting is
// done in the metric frame.
package design

import (
	"context"
	"fmt"
	"time"

	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/Deltares-research/Verkenning-2.0-sub001/mesh"
	"github.com/Deltares-research/Verkenning-2.0-sub001/terrain"
	"github.com/Deltares-research/Verkenning-2.0-sub001/volume"
	"github.com/ctessum/geom"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Designer runs the design pipeline.
type Designer struct {
	Projector *geodesy.Projector

	// Ground provides the existing ground elevation.
	Ground terrain.ElevationService

	// GridSize is the spacing in meters of the volume grid.
	GridSize float64

	// Alpha is the alpha shape parameter of the above-ground footprint.
	Alpha float64

	Log logrus.FieldLogger
}

func (d *Designer) log() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

// Session is the state of one dike design. It is updated by Designer.Run;
// callers must not run the same session concurrently.
type Session struct {
	ID uuid.UUID

	ReferenceLine ReferenceLine
	Profile       Profile
	Rivierzijde   Rivierzijde

	// Loading is true while a run is in progress.
	Loading bool

	Offsets OffsetSet
	Strips  []Strip
	Mesh    *mesh.Mesh
	Volumes *volume.Result
}

// NewSession returns a session for a reference line and profile.
func NewSession(ref ReferenceLine, profile Profile, side Rivierzijde) *Session {
	return &Session{
		ID:            uuid.New(),
		ReferenceLine: ref,
		Profile:       profile,
		Rivierzijde:   side,
	}
}

// Geometry is the output of the geometric stages of a run.
type Geometry struct {
	Offsets OffsetSet
	Strips  []Strip
	Mesh    *mesh.Mesh
}

// BuildGeometry generates offset lines for the profile, connects adjacent
// lines into strips and merges the strips into the design mesh.
func (d *Designer) BuildGeometry(ctx context.Context, ref ReferenceLine, profile Profile, side Rivierzijde) (*Geometry, error) {
	offsets, err := d.Offsets(ctx, ref, profile, side)
	if err != nil {
		return nil, err
	}
	strips, err := BuildStrips(offsets)
	if err != nil {
		return nil, err
	}
	m, err := MergeStrips(strips, d.log())
	if err != nil {
		return nil, err
	}
	return &Geometry{Offsets: offsets, Strips: strips, Mesh: m}, nil
}

// Volumes computes the earthwork volumes of a design mesh.
func (d *Designer) Volumes(ctx context.Context, m *mesh.Mesh) (*volume.Result, error) {
	e := &volume.Engine{
		Projector: d.Projector,
		Ground:    d.Ground,
		GridSize:  d.GridSize,
		Alpha:     d.Alpha,
		Log:       d.log(),
	}
	return e.Compute(ctx, m)
}

// Run builds the design of s and computes its volumes. The stages run one
// after another, and the geometry and volumes of s are replaced together
// once the last stage succeeds. If any stage fails the previous design of
// s is kept and the error is returned. Run does not panic.
func (d *Designer) Run(ctx context.Context, s *Session) (err error) {
	log := d.log().WithField("run", s.ID)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("design: run %s failed: %v", s.ID, r)
			log.Error(err)
		}
	}()

	if err := s.ReferenceLine.Validate(); err != nil {
		log.WithError(err).Error("design: invalid reference line")
		return err
	}
	if err := s.Profile.Validate(); err != nil {
		log.WithError(err).Error("design: invalid profile")
		return err
	}
	if s.Rivierzijde != Rechts && s.Rivierzijde != Links {
		err := fmt.Errorf("design: invalid rivierzijde %q", s.Rivierzijde)
		log.Error(err)
		return err
	}

	s.Loading = true
	defer func() { s.Loading = false }()
	start := time.Now()

	g, err := d.BuildGeometry(ctx, s.ReferenceLine, s.Profile, s.Rivierzijde)
	if err != nil {
		log.WithError(err).Error("design: building geometry")
		return err
	}
	log.WithFields(logrus.Fields{
		"offsets":   len(g.Offsets),
		"strips":    len(g.Strips),
		"triangles": g.Mesh.Len(),
	}).Info("design: geometry built")

	v, err := d.Volumes(ctx, g.Mesh)
	if err != nil {
		log.WithError(err).Error("design: computing volumes")
		return err
	}
	s.Offsets, s.Strips, s.Mesh, s.Volumes = g.Offsets, g.Strips, g.Mesh, v
	log.WithFields(logrus.Fields{
		"fill":       volume.Truncate2(v.FillVolume),
		"excavation": volume.Truncate2(v.ExcavationVolume),
		"total":      volume.Truncate2(v.TotalVolumeDifference),
		"duration":   time.Since(start),
	}).Info("design: volumes computed")
	return nil
}

// FootprintPolygons returns the flat outlines of the strips of s.
func (s *Session) FootprintPolygons() []geom.Polygon {
	o := make([]geom.Polygon, len(s.Strips))
	for i, st := range s.Strips {
		o[i] = st.Footprint2D
	}
	return o
}

// Geometry returns the current design geometry of s.
func (s *Session) Geometry() *Geometry {
	return &Geometry{Offsets: s.Offsets, Strips: s.Strips, Mesh: s.Mesh}
}
