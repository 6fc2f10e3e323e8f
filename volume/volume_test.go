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

package volume

import (
	"context"
	"math"
	"testing"

	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/Deltares-research/Verkenning-2.0-sub001/mesh"
	"github.com/Deltares-research/Verkenning-2.0-sub001/terrain"
	"github.com/ctessum/geom"
)

// Lower-left corner of the test area in UTM 31N.
var origin = geom.Point{X: 690000, Y: 5760000}

func loadedProjector(t *testing.T) *geodesy.Projector {
	p := geodesy.NewProjector("", "")
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	return p
}

// flatMesh returns a w by h meter rectangle at elevation z in the display
// frame.
func flatMesh(t *testing.T, p *geodesy.Projector, w, h, z float64) *mesh.Mesh {
	corners, err := p.Project([]geom.Point{
		origin,
		{X: origin.X + w, Y: origin.Y},
		{X: origin.X + w, Y: origin.Y + h},
		{X: origin.X, Y: origin.Y + h},
	}, geodesy.Metric, geodesy.Display)
	if err != nil {
		t.Fatal(err)
	}
	var q [5]mesh.Vertex
	for i, c := range corners {
		q[i] = mesh.Vertex{X: c.X, Y: c.Y, Z: z}
	}
	q[4] = q[0]
	m, err := mesh.FromQuad(q)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

type countingGround struct {
	terrain.ElevationService
	calls int
}

func (c *countingGround) QueryElevation(ctx context.Context, pts []geom.Point) ([]float64, error) {
	c.calls++
	return c.ElevationService.QueryElevation(ctx, pts)
}

func TestFlatFill(t *testing.T) {
	p := loadedProjector(t)
	const (
		ztop, zground = 3.0, 1.0
		gridSize      = 1.0
	)
	ground := &countingGround{ElevationService: terrain.Constant(zground)}
	e := &Engine{Projector: p, Ground: ground, GridSize: gridSize}
	r, err := e.Compute(context.Background(), flatMesh(t, p, 50, 20, ztop))
	if err != nil {
		t.Fatal(err)
	}
	if ground.calls != 1 {
		t.Errorf("ground queries: have %d, want 1", ground.calls)
	}
	if r.ExcavationVolume != 0 {
		t.Errorf("excavation: have %g, want 0", r.ExcavationVolume)
	}
	want := (ztop - zground) * gridSize * gridSize * float64(r.Samples)
	if math.Abs(r.FillVolume-want) > 1e-6 {
		t.Errorf("fill: have %g, want %g", r.FillVolume, want)
	}
	if math.Abs(r.TotalVolumeDifference-r.FillVolume) > 1e-6 {
		t.Errorf("total: have %g, want %g", r.TotalVolumeDifference, r.FillVolume)
	}
	// About one sample per square meter.
	if r.Samples < 900 || r.Samples > 1150 {
		t.Errorf("samples: have %d, want about 1000", r.Samples)
	}
	if len(r.Footprint) != 1 {
		t.Fatalf("footprint parts: have %d, want 1", len(r.Footprint))
	}
	if r.FootprintArea < 800 || r.FootprintArea > 1050 {
		t.Errorf("footprint area: have %g, want about 1000", r.FootprintArea)
	}
}

func TestCutAndFill(t *testing.T) {
	p := loadedProjector(t)
	m := flatMesh(t, p, 40, 10, 2)
	mid, err := p.ProjectPoint(geom.Point{X: origin.X + 20, Y: origin.Y}, geodesy.Metric, geodesy.Display)
	if err != nil {
		t.Fatal(err)
	}
	// Ground is at 1 west of the middle and at 2.5 east of it.
	ground := terrain.SurfaceFunc(func(x, y float64) float64 {
		if x < mid.X {
			return 1
		}
		return 2.5
	})
	r, err := (&Engine{Projector: p, Ground: ground, GridSize: 0.5}).Compute(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if r.FillVolume <= 0 || r.ExcavationVolume <= 0 {
		t.Fatalf("have fill %g and excavation %g, want both positive", r.FillVolume, r.ExcavationVolume)
	}
	if d := r.TotalVolumeDifference - (r.FillVolume - r.ExcavationVolume); math.Abs(d) > 1e-6 {
		t.Errorf("total differs from fill - excavation by %g", d)
	}
	// Fill is 1 m deep over half the area and cut 0.5 m over the other.
	if math.Abs(r.FillVolume-200)/200 > 0.1 {
		t.Errorf("fill: have %g, want about 200", r.FillVolume)
	}
	if math.Abs(r.ExcavationVolume-100)/100 > 0.1 {
		t.Errorf("excavation: have %g, want about 100", r.ExcavationVolume)
	}
}

func TestFootprintFailureKeepsVolumes(t *testing.T) {
	p := loadedProjector(t)
	e := &Engine{Projector: p, Ground: terrain.Constant(10), GridSize: 1}
	r, err := e.Compute(context.Background(), flatMesh(t, p, 10, 10, 3))
	if err != nil {
		t.Fatal(err)
	}
	if r.ExcavationVolume <= 0 {
		t.Errorf("excavation: have %g, want positive", r.ExcavationVolume)
	}
	if len(r.Footprint) != 0 {
		t.Errorf("the design is below ground, have %d footprint parts", len(r.Footprint))
	}
}

func TestNoSamples(t *testing.T) {
	p := loadedProjector(t)
	// A small triangle whose bounding box corner is off the triangle.
	pts, err := p.Project([]geom.Point{
		{X: origin.X + 0.1, Y: origin.Y},
		{X: origin.X + 0.2, Y: origin.Y + 0.1},
		{X: origin.X, Y: origin.Y + 0.2},
	}, geodesy.Metric, geodesy.Display)
	if err != nil {
		t.Fatal(err)
	}
	m := &mesh.Mesh{Triangles: []mesh.Triangle{{
		A: mesh.Vertex{X: pts[0].X, Y: pts[0].Y, Z: 1},
		B: mesh.Vertex{X: pts[1].X, Y: pts[1].Y, Z: 1},
		C: mesh.Vertex{X: pts[2].X, Y: pts[2].Y, Z: 1},
	}}}
	ground := &countingGround{ElevationService: terrain.Constant(0)}
	_, err = (&Engine{Projector: p, Ground: ground, GridSize: 10}).Compute(context.Background(), m)
	if err != ErrNoSamples {
		t.Errorf("have %v, want %v", err, ErrNoSamples)
	}
	if ground.calls != 0 {
		t.Errorf("ground was queried %d times", ground.calls)
	}
}

func TestTruncate2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{in: 12.3456, want: 12.34},
		{in: 0.999, want: 0.99},
		{in: -1.238, want: -1.23},
		{in: 5, want: 5},
	}
	for _, test := range tests {
		if have := Truncate2(test.in); math.Abs(have-test.want) > 1e-12 {
			t.Errorf("Truncate2(%g): have %g, want %g", test.in, have, test.want)
		}
	}
	r := Result{FillVolume: 1.239, ExcavationVolume: 2.001}.Display()
	if r.FillVolume != 1.23 || r.ExcavationVolume != 2 {
		t.Errorf("display: have %+v", r)
	}
}
