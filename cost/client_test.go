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

package cost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var square = Ring{{5.1, 51.9, 3}, {5.2, 51.9, 3}, {5.2, 52, 4}, {5.1, 52, 4}, {5.1, 51.9, 3}}

func testRequest() Request {
	return Request{
		Complexity:   "makkelijke maatregel",
		RoadSurface:  120.5,
		NumberHouses: 3,
		Polygons:     []Ring{square, square},
	}
}

func TestCalculate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cost_calculation", r.URL.Path)
		assert.Equal(t, "makkelijke maatregel", r.URL.Query().Get("complexity"))
		assert.Equal(t, "120.5", r.URL.Query().Get("road_surface"))
		assert.Equal(t, "3", r.URL.Query().Get("number_houses"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var fc struct {
			Type     string `json:"type"`
			Features []struct {
				Geometry struct {
					Type        string         `json:"type"`
					Coordinates [][][3]float64 `json:"coordinates"`
				} `json:"geometry"`
			} `json:"features"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fc))
		assert.Equal(t, "FeatureCollection", fc.Type)
		if assert.Len(t, fc.Features, 2) {
			assert.Equal(t, "Polygon", fc.Features[0].Geometry.Type)
			assert.Equal(t, [][][3]float64{square}, fc.Features[0].Geometry.Coordinates)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"directe_bouwkosten": 1234.5, "engineeringkosten": {"totaal": 10}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	b, err := c.Calculate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"directe_bouwkosten", "engineeringkosten"}, b.Categories())

	v, ok := b.Value("directe_bouwkosten")
	assert.True(t, ok)
	assert.Equal(t, 1234.5, v)
	_, ok = b.Value("engineeringkosten")
	assert.False(t, ok)

	var eng struct{ Totaal float64 }
	require.NoError(t, b.Decode("engineeringkosten", &eng))
	assert.Equal(t, 10.0, eng.Totaal)
	assert.Error(t, b.Decode("risicoreservering", &eng))
}

func TestServerError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{name: "detail", status: http.StatusUnprocessableEntity, body: `{"detail": "geen geldige geometrie"}`, detail: "geen geldige geometrie"},
		{name: "structured detail", status: http.StatusBadRequest, body: `{"detail": [{"loc": "complexity"}]}`, detail: `[{"loc": "complexity"}]`},
		{name: "text", status: http.StatusInternalServerError, body: "internal error\n", detail: "internal error"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL+"/").Calculate(context.Background(), testRequest())
			var se *ServerError
			require.True(t, errors.As(err, &se), "have %v", err)
			assert.Equal(t, test.status, se.StatusCode)
			assert.Equal(t, test.detail, se.Detail)
			assert.Equal(t, 1, calls, "server errors are not retried")
		})
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/"
	srv.Close()

	c := NewClient(url)
	c.MaxElapsedTime = 300 * time.Millisecond
	_, err := c.Calculate(context.Background(), testRequest())
	assert.True(t, errors.Is(err, ErrUnreachable), "have %v", err)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	c.HTTP.Timeout = 50 * time.Millisecond
	_, err := c.Calculate(context.Background(), testRequest())
	assert.True(t, errors.Is(err, ErrTimeout), "have %v", err)
}

func TestCanceled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL+"/").Calculate(ctx, testRequest())
	assert.True(t, errors.Is(err, context.Canceled), "have %v", err)
}

func TestNoPolygons(t *testing.T) {
	_, err := NewClient("http://localhost/").Calculate(context.Background(), Request{})
	assert.Error(t, err)
}
