package geofilm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound reports a location name the resolver could not place
// anywhere. Callers treat it as a settled miss, not a failure.
var ErrNotFound = errors.New("location not found")

// Resolver turns a location name into coordinates. A failed lookup is
// ErrNotFound; any other error means the resolver itself broke.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Coordinate, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name string) (Coordinate, error)

func (f ResolverFunc) Resolve(ctx context.Context, name string) (Coordinate, error) {
	return f(ctx, name)
}

// DefaultUserAgent identifies this tool to the Nominatim service.
const DefaultUserAgent = "UCU_Lab_Geofilm"

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimResolver geocodes location names against the OpenStreetMap
// Nominatim HTTP API. The service's usage policy demands an identifying
// User-Agent and at most one request per second, so every call waits on
// the limiter first.
type NominatimResolver struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NominatimOption is a functional option for NewNominatimResolver.
type NominatimOption func(*NominatimResolver)

// WithBaseURL points the resolver at a different Nominatim endpoint.
func WithBaseURL(u string) NominatimOption {
	return func(r *NominatimResolver) {
		r.baseURL = u
	}
}

// WithUserAgent sets the identifying User-Agent header.
func WithUserAgent(ua string) NominatimOption {
	return func(r *NominatimResolver) {
		r.userAgent = ua
	}
}

// WithRequestsPerSecond adjusts the request pace.
func WithRequestsPerSecond(rps float64) NominatimOption {
	return func(r *NominatimResolver) {
		r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) NominatimOption {
	return func(r *NominatimResolver) {
		r.httpClient.Timeout = d
	}
}

// NewNominatimResolver builds a resolver with the public Nominatim
// endpoint, a one-request-per-second pace and a 10 second timeout.
func NewNominatimResolver(opts ...NominatimOption) *NominatimResolver {
	r := &NominatimResolver{
		baseURL:    defaultNominatimURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve queries Nominatim for the best match of name.
func (n *NominatimResolver) Resolve(ctx context.Context, name string) (Coordinate, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return Coordinate{}, err
	}

	params := url.Values{
		"q":      {name},
		"format": {"json"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Coordinate{}, fmt.Errorf("building nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Coordinate{}, fmt.Errorf("querying nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, fmt.Errorf("nominatim: status %d", resp.StatusCode)
	}

	// Nominatim serializes coordinates as strings.
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinate{}, fmt.Errorf("decoding nominatim response: %w", err)
	}
	if len(results) == 0 {
		return Coordinate{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing nominatim latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing nominatim longitude %q: %w", results[0].Lon, err)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}
