package transitagg

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/theoremus-urban-solutions/transit-aggregator/cache"
	"github.com/theoremus-urban-solutions/transit-aggregator/config"
	"github.com/theoremus-urban-solutions/transit-aggregator/feeds"
	"github.com/theoremus-urban-solutions/transit-aggregator/metrics"
	"github.com/theoremus-urban-solutions/transit-aggregator/upstream"
)

// ErrUpstreamUnavailable means retries were exhausted and no cached value
// exists to fall back to. The boundary maps it to a 502-class response.
var ErrUpstreamUnavailable = errors.New("upstream unavailable and no cached data")

// Pipeline orchestrates the adapters, the retrying fetcher and the TTL
// cache to answer the three query types with the resilience guarantees of
// the service: fresh cache hits skip the upstream, refresh failures fall
// back to stale data, and per-key refreshes are never duplicated.
type Pipeline struct {
	cfg      *config.AppConfig
	fetchers map[feeds.Source]*upstream.Fetcher
	arrivals *cache.Store[[]feeds.Arrival]
	group    singleflight.Group
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewPipeline wires a pipeline from configuration. The cache instance is
// owned here and constructed per pipeline; tests get isolation by
// constructing fresh pipelines.
func NewPipeline(cfg *config.AppConfig, m *metrics.Collector) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		fetchers: map[feeds.Source]*upstream.Fetcher{
			feeds.SourceBilbobus:  newFetcher(cfg.Sources.Bilbobus),
			feeds.SourceEuskadi:   newFetcher(cfg.Sources.Euskadi),
			feeds.SourceEuskotren: newFetcher(cfg.Sources.Euskotren),
		},
		arrivals: cache.NewStore[[]feeds.Arrival](),
		metrics:  m,
		now:      time.Now,
	}
}

func newFetcher(sc config.SourceConfig) *upstream.Fetcher {
	f := upstream.NewFetcher()
	if sc.Attempts > 0 {
		f.Attempts = sc.Attempts
	}
	if sc.TimeoutMS > 0 {
		f.Timeout = time.Duration(sc.TimeoutMS) * time.Millisecond
	}
	return f
}

func (p *Pipeline) fetch(ctx context.Context, source feeds.Source, url string) ([]byte, error) {
	p.metrics.FetchAttempts.WithLabelValues(string(source)).Inc()
	body, err := p.fetchers[source].Fetch(ctx, url)
	if err != nil {
		p.metrics.FetchFailures.WithLabelValues(string(source)).Inc()
	}
	return body, err
}

// BusPositions returns the current Bilbobus vehicle positions.
func (p *Pipeline) BusPositions(ctx context.Context) ([]feeds.VehiclePosition, error) {
	body, err := p.fetch(ctx, feeds.SourceBilbobus, p.cfg.Sources.Bilbobus.BaseURL+"/vehicles")
	if err != nil {
		return nil, err
	}
	return feeds.ParseBilbobusPositions(body)
}

// NetworkPositions returns the multi-operator positions, with Bilbobus
// vehicles excluded by the adapter to avoid double counting.
func (p *Pipeline) NetworkPositions(ctx context.Context) ([]feeds.VehiclePosition, error) {
	body, err := p.fetch(ctx, feeds.SourceEuskadi, p.cfg.Sources.Euskadi.BaseURL+"/vehicles?format=geojson")
	if err != nil {
		return nil, err
	}
	return feeds.ParseEuskadiPositions(body)
}

// RailTrips returns Euskotren trips in the configured bounding box that
// are active inside the [now, now+window] departure window.
func (p *Pipeline) RailTrips(ctx context.Context) ([]feeds.RailTrip, error) {
	et := p.cfg.Euskotren
	now := p.now().Unix()
	u := fmt.Sprintf("%s/trips?start=%d&end=%d&minLat=%g&minLon=%g&maxLat=%g&maxLon=%g",
		p.cfg.Sources.Euskotren.BaseURL, now, now+int64(et.WindowSec),
		et.MinLat, et.MinLon, et.MaxLat, et.MaxLon)
	body, err := p.fetch(ctx, feeds.SourceEuskotren, u)
	if err != nil {
		return nil, err
	}
	return feeds.ParseEuskotrenTrips(body, et.RouteColor)
}

// PositionsResult is the combined live snapshot across all sources.
type PositionsResult struct {
	Vehicles  []feeds.VehiclePosition `json:"vehicles"`
	RailTrips []feeds.RailTrip        `json:"railTrips"`
}

// CombinedPositions queries the three sources in parallel and joins the
// results. Positions are never cached; a failed source contributes an
// empty slice and a log line, so the caller's previous rendered set stays
// untouched for that cycle.
func (p *Pipeline) CombinedPositions(ctx context.Context) PositionsResult {
	result := PositionsResult{
		Vehicles:  []feeds.VehiclePosition{},
		RailTrips: []feeds.RailTrip{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		vehicles, err := p.BusPositions(ctx)
		if err != nil {
			log.Printf("positions: bilbobus fetch failed: %v", err)
			return
		}
		mu.Lock()
		result.Vehicles = append(result.Vehicles, vehicles...)
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		vehicles, err := p.NetworkPositions(ctx)
		if err != nil {
			log.Printf("positions: euskadi fetch failed: %v", err)
			return
		}
		mu.Lock()
		result.Vehicles = append(result.Vehicles, vehicles...)
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		trips, err := p.RailTrips(ctx)
		if err != nil {
			log.Printf("positions: euskotren fetch failed: %v", err)
			return
		}
		mu.Lock()
		result.RailTrips = append(result.RailTrips, trips...)
		mu.Unlock()
	}()
	wg.Wait()

	return result
}

// Arrivals answers "arrivals for stop" with the cache state machine:
// a fresh entry is served directly; an expired one triggers a refresh
// that concurrent callers for the same stop share; a failed refresh
// re-serves the previous value marked stale; a failure with nothing
// cached surfaces ErrUpstreamUnavailable.
func (p *Pipeline) Arrivals(ctx context.Context, stationCode string) ([]feeds.Arrival, bool, error) {
	key := "arrivals:" + stationCode
	ttl := time.Duration(p.cfg.Cache.ArrivalsTTLMS) * time.Millisecond

	if p.arrivals.Fresh(key, ttl) {
		if entry, ok := p.arrivals.Get(key); ok {
			p.metrics.CacheHits.Inc()
			return entry.Value, false, nil
		}
	}
	p.metrics.CacheMisses.Inc()

	v, err, _ := p.group.Do(key, func() (any, error) {
		u := p.cfg.Sources.Bilbobus.BaseURL + "/stops/" + url.PathEscape(stationCode) + "/arrivals"
		body, err := p.fetch(ctx, feeds.SourceBilbobus, u)
		if err != nil {
			return nil, err
		}
		arrivals, err := feeds.ParseBilbobusArrivals(body, p.now())
		if err != nil {
			return nil, err
		}
		p.arrivals.Set(key, arrivals)
		return arrivals, nil
	})
	if err != nil {
		if entry, ok := p.arrivals.Get(key); ok {
			p.metrics.StaleServes.Inc()
			log.Printf("arrivals: serving stale data for stop %s after refresh failure: %v", stationCode, err)
			return entry.Value, true, nil
		}
		return nil, false, fmt.Errorf("%w: stop %s: %v", ErrUpstreamUnavailable, stationCode, err)
	}
	return v.([]feeds.Arrival), false, nil
}

// TripDetail fetches the stop-level rows for one trip on demand. Results
// are not cached; a total failure means "no data" to the caller.
func (p *Pipeline) TripDetail(ctx context.Context, tripID string) ([]feeds.StopCall, error) {
	u := p.cfg.Sources.Euskotren.BaseURL + "/trips/" + url.PathEscape(tripID) + "/stoptimes"
	body, err := p.fetch(ctx, feeds.SourceEuskotren, u)
	if err != nil {
		return nil, err
	}
	return feeds.ParseEuskotrenTripDetail(body, p.now())
}
