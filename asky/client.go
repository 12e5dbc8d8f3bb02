// Package asky reads the atmosphere along a vertical profile from a running
// ActiveSky weather engine.
package asky

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"

	"mach_cas_calc/units"
)

const (
	DefaultHost    = "localhost"
	DefaultPort    = 19285
	DefaultTimeout = 10 * time.Second

	atmospherePath = "/ActiveSky/API/GetAtmosphere"
)

// ErrNoWeatherData is returned when ActiveSky has no weather loaded for the
// requested position.
var ErrNoWeatherData = errors.New("activesky: no weather data")

// Layer is the weather at one altitude, in SI units.
type Layer struct {
	Altitude      float64 // geopotential altitude, m
	WindDirection float64 // direction the wind blows from, degree
	WindSpeed     float64 // m/s
	Pressure      float64 // static pressure, Pa
	Temperature   float64 // static temperature, K
}

// Client queries the ActiveSky HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which only sets a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for the ActiveSky instance at host:port.
func NewClient(host string, port int, timeout time.Duration, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "activesky")
	return c
}

/*
Fetch the atmosphere above a position.

	Args:
	    ctx: request context
	    pos: position, lon/lat in degree
	    altitudesFt: altitudes to query, ft

	Returns:
	    one layer per altitude reported by ActiveSky, in SI units

	Notes:
	    ActiveSky answers the literal body "Error" when it has no weather for
	    the position; that is reported as ErrNoWeatherData.
*/
func (c *Client) GetAtmosphere(ctx context.Context, pos orb.Point, altitudesFt []float64) ([]Layer, error) {
	if err := checkPosition(pos); err != nil {
		return nil, fmt.Errorf("get atmosphere: %w", err)
	}
	if len(altitudesFt) == 0 {
		return nil, errors.New("get atmosphere: no altitudes requested")
	}

	alts := make([]string, len(altitudesFt))
	for i, a := range altitudesFt {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("get atmosphere: invalid altitude %g", a)
		}
		alts[i] = strconv.FormatFloat(math.Trunc(a), 'f', 0, 64)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pos.Lat(), 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pos.Lon(), 'f', -1, 64))
	q.Set("altitudes", strings.Join(alts, "|"))
	reqURL := c.baseURL + atmospherePath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	c.logger.Info("requesting atmosphere", "lat", pos.Lat(), "lon", pos.Lon(), "altitudes", q.Get("altitudes"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching atmosphere: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	c.logger.Debug("received atmosphere", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("activesky returned status %d", resp.StatusCode)
	}

	return parseAtmosphere(body)
}

func parseAtmosphere(body []byte) ([]Layer, error) {
	if strings.TrimSpace(string(body)) == "Error" {
		return nil, ErrNoWeatherData
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("activesky: response is not valid JSON")
	}

	data := gjson.GetBytes(body, "WeatherData")
	if !data.IsArray() {
		return nil, errors.New("activesky: response has no WeatherData array")
	}

	var layers []Layer
	var perr error
	data.ForEach(func(_, v gjson.Result) bool {
		var l Layer
		l, perr = parseLayer(v)
		if perr != nil {
			return false
		}
		layers = append(layers, l)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	if len(layers) == 0 {
		return nil, ErrNoWeatherData
	}
	return layers, nil
}

// parseLayer converts one WeatherData entry from ft, kt, hPa and degC.
func parseLayer(v gjson.Result) (Layer, error) {
	fields := []string{"Altitude", "WindDirection", "WindSpeed", "Pressure", "Temperature"}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		r := v.Get(f)
		if !r.Exists() {
			return Layer{}, fmt.Errorf("activesky: layer is missing %s", f)
		}
		vals[i] = r.Float()
	}

	return Layer{
		Altitude:      units.FeetToMetres(vals[0]),
		WindDirection: vals[1],
		WindSpeed:     units.KnotsToMetresPerSecond(vals[2]),
		Pressure:      units.HectopascalsToPascals(vals[3]),
		Temperature:   units.CelsiusToKelvin(vals[4]),
	}, nil
}
