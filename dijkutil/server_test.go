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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ctessum/geom"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Set("GroundElevation", 8.0)
	d, err := DesignerConfig(cfg)
	require.NoError(t, err)
	return (&Server{Designer: d, StationInterval: 1}).Handler()
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func testdata(t *testing.T, name string) json.RawMessage {
	b, err := ioutil.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func TestVersionRoute(t *testing.T) {
	w := httptest.NewRecorder()
	testServer(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version": "`+Version+`"}`, w.Body.String())
}

func TestDesignRoute(t *testing.T) {
	h := testServer(t)
	w := post(t, h, "/api/design", map[string]interface{}{
		"referenceLine": testdata(t, "referentielijn.geojson"),
		"profile":       testdata(t, "profiel.json"),
		"rivierzijde":   "links",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DesignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Offsets, 4)
	assert.Len(t, resp.Strips, 3)
	if assert.Len(t, resp.Taluds, 3) {
		assert.Nil(t, resp.Taluds[1].Ratio, "the crest is flat")
		if assert.NotNil(t, resp.Taluds[0].Ratio) {
			assert.Equal(t, 3.0, *resp.Taluds[0].Ratio)
		}
	}
	for _, o := range resp.Offsets {
		for _, c := range o.Coordinates {
			assert.InDelta(t, 5.85, c[0], 0.01)
			assert.InDelta(t, 51.85, c[1], 0.01)
		}
	}
	// A 45 m² cross-section over a 103 m line.
	assert.InDelta(t, 45*103, resp.Volumes.FillVolume, 45*103*0.1)
	assert.Equal(t, 0.0, resp.Volumes.ExcavationVolume)
	assert.NotEmpty(t, resp.Footprint)
}

func TestDesignRouteErrors(t *testing.T) {
	h := testServer(t)
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "no reference line", body: map[string]interface{}{"profile": testdata(t, "profiel.json")}},
		{name: "point", body: map[string]interface{}{
			"referenceLine": json.RawMessage(`{"type": "Point", "coordinates": [5.85, 51.85]}`),
			"profile":       testdata(t, "profiel.json"),
		}},
		{name: "rivierzijde", body: map[string]interface{}{
			"referenceLine": testdata(t, "referentielijn.geojson"),
			"profile":       testdata(t, "profiel.json"),
			"rivierzijde":   "midden",
		}},
		{name: "empty profile", body: map[string]interface{}{
			"referenceLine": testdata(t, "referentielijn.geojson"),
			"profile":       []interface{}{},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := post(t, h, "/api/design", test.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var e struct{ Detail string }
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
			assert.NotEmpty(t, e.Detail)
		})
	}
}

type failingGround struct{}

func (failingGround) QueryElevation(context.Context, []geom.Point) ([]float64, error) {
	return nil, errors.New("ground service unavailable")
}

func TestDesignRouteGroundFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d, err := DesignerConfig(testConfig())
	require.NoError(t, err)
	d.Ground = failingGround{}
	h := (&Server{Designer: d, StationInterval: 1}).Handler()

	w := post(t, h, "/api/design", map[string]interface{}{
		"referenceLine": testdata(t, "referentielijn.geojson"),
		"profile":       testdata(t, "profiel.json"),
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var e map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Contains(t, e["detail"], "ground service unavailable")
	assert.NotContains(t, e, "strips", "no geometry without volumes")
}

func TestCrossSectionRoute(t *testing.T) {
	w := post(t, testServer(t), "/api/crosssection", map[string]interface{}{
		"referenceLine": testdata(t, "referentielijn.geojson"),
		"point":         []float64{5.8504, 51.8502},
		"length":        39,
		"interval":      2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Points []CrossSectionPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Points, 20)
	for i, p := range resp.Points {
		assert.Equal(t, float64(2*i), p.Afstand)
		if assert.NotNil(t, p.Hoogte) {
			assert.Equal(t, 8.0, *p.Hoogte)
		}
	}
}
