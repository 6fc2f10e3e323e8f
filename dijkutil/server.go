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

package dijkutil

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/Deltares-research/Verkenning-2.0-sub001/volume"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Server is the HTTP API of the dike design tool.
type Server struct {
	Designer *design.Designer

	// StationInterval is the default point spacing of cross-sections.
	StationInterval float64
}

// Handler returns the routes of the API.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logrus.StandardLogger()))
	api := r.Group("/api")
	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": Version})
	})
	api.POST("/design", s.design)
	api.POST("/crosssection", s.crossSection)
	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("dijkontwerp: request")
	}
}

// DesignRequest is the body of a design request.
type DesignRequest struct {
	// ReferenceLine is a GeoJSON line in longitude and latitude.
	ReferenceLine json.RawMessage `json:"referenceLine" binding:"required"`
	Profile       design.Profile  `json:"profile" binding:"required"`
	Rivierzijde   string          `json:"rivierzijde"`
}

// OffsetLine is an offset line in a design response.
type OffsetLine struct {
	Afstand     float64      `json:"afstand"`
	Coordinates [][3]float64 `json:"coordinates"`
}

// StripOutline is the outline of a strip in a design response.
type StripOutline struct {
	Van         float64      `json:"van"`
	Tot         float64      `json:"tot"`
	Coordinates [][3]float64 `json:"coordinates"`
}

// Slope is a talud in a design response. Ratio is null for flat parts.
type Slope struct {
	Van   string   `json:"van"`
	Tot   string   `json:"tot"`
	Ratio *float64 `json:"ratio"`
}

// DesignResponse is the result of a design request. All coordinates are
// longitude, latitude and elevation.
type DesignResponse struct {
	ID        uuid.UUID        `json:"id"`
	Offsets   []OffsetLine     `json:"offsets"`
	Strips    []StripOutline   `json:"strips"`
	Taluds    []Slope          `json:"taluds"`
	Volumes   volume.Result    `json:"volumes"`
	Footprint [][][][2]float64 `json:"footprint"`
}

func coords3(l design.Line) [][3]float64 {
	o := make([][3]float64, len(l))
	for i, c := range l {
		o[i] = [3]float64{c.X, c.Y, c.Z}
	}
	return o
}

// fail writes an error response in the format of the cost service.
func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"detail": err.Error()})
}

// inputError reports whether err is caused by the request.
func inputError(err error) bool {
	return errors.Is(err, design.ErrEmptyReferenceLine) ||
		errors.Is(err, design.ErrEmptyProfile) ||
		errors.Is(err, design.ErrNoOffsets)
}

func (s *Server) design(c *gin.Context) {
	var req DesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ll, err := ReadReferenceLine(req.ReferenceLine)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ref, err := ToReferenceLine(s.Designer, ll)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Rivierzijde == "" {
		req.Rivierzijde = string(design.Rechts)
	}
	side, err := design.ParseRivierzijde(req.Rivierzijde)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := req.Profile.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	session := design.NewSession(ref, req.Profile, side)
	if err := s.Designer.Run(c.Request.Context(), session); err != nil {
		status := http.StatusInternalServerError
		if inputError(err) {
			status = http.StatusBadRequest
		}
		fail(c, status, err)
		return
	}
	l, err := Layers(s.Designer, session)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	resp := DesignResponse{ID: session.ID}
	for _, og := range l.Offsets {
		resp.Offsets = append(resp.Offsets, OffsetLine{Afstand: float64(og.Distance), Coordinates: coords3(og.Line)})
	}
	for _, st := range l.Strips {
		resp.Strips = append(resp.Strips, StripOutline{Van: float64(st.From), Tot: float64(st.To), Coordinates: coords3(st.Footprint3D)})
	}
	for _, t := range design.Taluds(req.Profile) {
		sl := Slope{Van: t.From, Tot: t.To}
		if !math.IsInf(t.Ratio, 0) {
			r := t.Ratio
			sl.Ratio = &r
		}
		resp.Taluds = append(resp.Taluds, sl)
	}
	resp.Volumes = session.Volumes.Display()
	for _, p := range l.Footprint {
		poly := make([][][2]float64, len(p))
		for i, ring := range p {
			poly[i] = make([][2]float64, len(ring))
			for j, pt := range ring {
				poly[i][j] = [2]float64{pt.X, pt.Y}
			}
		}
		resp.Footprint = append(resp.Footprint, poly)
	}
	c.JSON(http.StatusOK, resp)
}

// CrossSectionRequest is the body of a cross-section request.
type CrossSectionRequest struct {
	ReferenceLine json.RawMessage `json:"referenceLine" binding:"required"`
	// Point is the longitude and latitude near which the cross-section
	// crosses the reference line.
	Point    [2]float64 `json:"point"`
	Length   float64    `json:"length" binding:"required"`
	Interval float64    `json:"interval"`
}

// CrossSectionPoint is a point of a cross-section response. Hoogte is null
// where there is no ground data.
type CrossSectionPoint struct {
	Afstand float64  `json:"afstand"`
	Hoogte  *float64 `json:"hoogte"`
}

func (s *Server) crossSection(c *gin.Context) {
	var req CrossSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Interval == 0 {
		req.Interval = s.StationInterval
	}
	ll, err := ReadReferenceLine(req.ReferenceLine)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ref, err := ToReferenceLine(s.Designer, ll)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	pts, err := CrossSection(c.Request.Context(), s.Designer, ref, req.Point[0], req.Point[1], req.Length, req.Interval)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	o := make([]CrossSectionPoint, len(pts))
	for i, p := range pts {
		o[i].Afstand = p.M
		if p.Ground {
			z := p.Z
			o[i].Hoogte = &z
		}
	}
	c.JSON(http.StatusOK, gin.H{"points": o})
}
