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

// Package cost sends a dike design to the cost calculation service and
// returns the cost breakdown.
package cost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// DefaultTimeout is the time allowed for a single request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrUnreachable is returned when the service cannot be contacted.
	ErrUnreachable = errors.New("cost: the cost service could not be reached")

	// ErrTimeout is returned when the service does not answer in time.
	ErrTimeout = errors.New("cost: the cost service did not respond in time")
)

// ServerError is a non-2xx response of the cost service.
type ServerError struct {
	StatusCode int
	// Detail is the error message returned by the service, if any.
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("cost: service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("cost: service returned status %d: %s", e.StatusCode, e.Detail)
}

// Ring is a closed polygon ring of longitude, latitude and elevation
// triples.
type Ring [][3]float64

// Request holds the design and the parameters of a cost calculation.
type Request struct {
	Complexity   string
	RoadSurface  float64
	NumberHouses int

	// Polygons are the 3D design surfaces in WGS84.
	Polygons []Ring
}

// Breakdown is the response of the cost service, keyed by cost category.
// The values are left undecoded.
type Breakdown map[string]json.RawMessage

// Categories returns the category names in sorted order.
func (b Breakdown) Categories() []string {
	o := make([]string, 0, len(b))
	for k := range b {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// Value returns the numeric value of a category. It returns false if the
// category is missing or not a number.
func (b Breakdown) Value(category string) (float64, bool) {
	raw, ok := b[category]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// Decode unmarshals the value of a category into v.
func (b Breakdown) Decode(category string, v interface{}) error {
	raw, ok := b[category]
	if !ok {
		return fmt.Errorf("cost: category %q not in breakdown", category)
	}
	return json.Unmarshal(raw, v)
}

// Client is a client of the cost calculation service.
type Client struct {
	// APIURL is the base URL of the service, ending in a slash.
	APIURL string

	HTTP *http.Client

	// MaxElapsedTime limits the time spent retrying requests that
	// failed because of network errors.
	MaxElapsedTime time.Duration

	Log logrus.FieldLogger
}

// NewClient returns a client for the service at apiURL.
func NewClient(apiURL string) *Client {
	return &Client{
		APIURL:         apiURL,
		HTTP:           &http.Client{Timeout: DefaultTimeout},
		MaxElapsedTime: 2 * time.Minute,
	}
}

func (c *Client) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Endpoint returns the URL of the cost calculation for req.
func (c *Client) Endpoint(req Request) (string, error) {
	u, err := url.Parse(c.APIURL + "cost_calculation")
	if err != nil {
		return "", fmt.Errorf("cost: invalid service URL: %w", err)
	}
	q := u.Query()
	q.Set("complexity", req.Complexity)
	q.Set("road_surface", strconv.FormatFloat(req.RoadSurface, 'f', -1, 64))
	q.Set("number_houses", strconv.Itoa(req.NumberHouses))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Body returns the GeoJSON feature collection sent to the service.
func Body(polygons []Ring) ([]byte, error) {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, len(polygons))}
	for i, r := range polygons {
		coords := make([]gogeom.Coord, len(r))
		for j, c := range r {
			coords[j] = gogeom.Coord{c[0], c[1], c[2]}
		}
		p, err := gogeom.NewPolygon(gogeom.XYZ).SetCoords([][]gogeom.Coord{coords})
		if err != nil {
			return nil, fmt.Errorf("cost: polygon %d: %w", i, err)
		}
		fc.Features[i] = &geojson.Feature{
			Geometry:   p,
			Properties: map[string]interface{}{"index": i},
		}
	}
	return json.Marshal(&fc)
}

// Calculate requests the cost of a design. Requests that fail because of
// network errors are retried with exponential backoff until the context
// is done or MaxElapsedTime has passed.
func (c *Client) Calculate(ctx context.Context, req Request) (Breakdown, error) {
	if len(req.Polygons) == 0 {
		return nil, fmt.Errorf("cost: no design polygons")
	}
	endpoint, err := c.Endpoint(req)
	if err != nil {
		return nil, err
	}
	body, err := Body(req.Polygons)
	if err != nil {
		return nil, err
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	var result Breakdown
	op := func() error {
		r, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		r = r.WithContext(ctx)
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Accept", "application/json")
		resp, err := client.Do(r)
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return backoff.Permanent(serverError(resp))
		}
		b := make(Breakdown)
		if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
			return backoff.Permanent(fmt.Errorf("cost: decoding response: %w", err))
		}
		result = b
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = c.MaxElapsedTime
	log := c.log().WithField("endpoint", endpoint)
	err = backoff.RetryNotify(op, backoff.WithContext(eb, ctx), func(err error, d time.Duration) {
		log.WithError(err).Warnf("cost: retrying in %v", d)
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	return result, nil
}

// classify maps transport failures to ErrTimeout or ErrUnreachable.
func classify(ctx context.Context, err error) error {
	var se *ServerError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("cost: %w", ctx.Err())
	}
	var ue *url.Error
	if !errors.As(err, &ue) && ctx.Err() == nil {
		return err
	}
	if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// serverError reads the detail message of an error response.
func serverError(resp *http.Response) *ServerError {
	se := &ServerError{StatusCode: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return se
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(b, &body) == nil && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			se.Detail = s
		} else {
			se.Detail = string(body.Detail)
		}
		return se
	}
	se.Detail = strings.TrimSpace(string(b))
	return se
}
