// Package snotel is a data-access client for the SNOTEL/CCSS snow
// station archive. It fetches station metadata and daily time-series
// measurements, renames upstream field codes to canonical column
// names, coerces types against declared schemas, and caches validated
// results on disk so repeated calls stay off the network.
package snotel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Upstream endpoints. These are fixed; tests point the client's
// internal URL fields at local servers instead.
const (
	metadataURL        = "https://raw.githubusercontent.com/egagli/snotel_ccss_stations/main/all_stations.geojson"
	stationURLTemplate = "https://raw.githubusercontent.com/egagli/snotel_ccss_stations/main/data/%s.csv"
	bulkURL            = "https://raw.githubusercontent.com/egagli/snotel_ccss_stations/main/data/all_station_data.tar.lzma"
)

// Cache lifetimes. The upstream archive updates daily.
const (
	metadataCacheTTL = 24 * time.Hour
	stationCacheTTL  = 24 * time.Hour
)

// Artifact names for the fixed logical resources. Single-station
// artifacts are named after the station id.
const (
	metadataArtifact = "all_stations"
	bulkArtifact     = "all_station_data"
)

// metadataColumnMap renames upstream geojson property names to
// canonical metadata columns. Properties outside the map pass through.
var metadataColumnMap = map[string]string{
	"code":          "code",
	"name":          "name",
	"network":       "network",
	"elevation_m":   "elevation_m",
	"latitude":      "latitude",
	"longitude":     "longitude",
	"state":         "state",
	"HUC":           "huc",
	"mgrs":          "mgrs",
	"mountainRange": "mountain_range",
	"beginDate":     "begin_date",
	"endDate":       "end_date",
	"csvData":       "has_csv_data",
}

// stationColumnMap renames upstream sensor field codes to canonical
// observation columns.
var stationColumnMap = map[string]string{
	"WTEQ":   "swe_m",
	"SNWD":   "snow_depth_m",
	"PRCPSA": "precip_m",
	"TMIN":   "tmin_c",
	"TMAX":   "tmax_c",
	"TAVG":   "tavg_c",
}

// Client fetches SNOTEL data with a local disk cache. It is safe for
// concurrent use in the sense that it holds no mutable state after
// construction, but concurrent writes to the same artifact are not
// coordinated.
type Client struct {
	httpClient *http.Client
	store      *artifactStore
	log        zerolog.Logger

	metadataURL string
	stationURL  string
	bulkURL     string
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	cacheDir   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// WithCacheDir sets the cache directory. An empty value keeps the
// platform default.
func WithCacheDir(dir string) Option {
	return func(o *clientOptions) { o.cacheDir = dir }
}

// WithHTTPClient sets the HTTP client used for upstream requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) { o.logger = &l }
}

// New creates a Client, creating the cache directory if needed.
func New(opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	dir := o.cacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, &CacheIOError{Op: "locate", Path: "user cache dir", Err: err}
		}
		dir = filepath.Join(base, "snotel-lib")
	}
	store, err := newArtifactStore(dir)
	if err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}

	return &Client{
		httpClient:  httpClient,
		store:       store,
		log:         logger,
		metadataURL: metadataURL,
		stationURL:  stationURLTemplate,
		bulkURL:     bulkURL,
	}, nil
}

// CacheDir returns the directory holding the cache artifacts.
func (c *Client) CacheDir() string {
	return c.store.dir
}

// GetStationsMetadata returns metadata for every station, keyed by
// station code. With forceUpdate false a fresh cache artifact is
// served instead of hitting the network.
func (c *Client) GetStationsMetadata(ctx context.Context, forceUpdate bool) (*Table, error) {
	start := time.Now()

	if !forceUpdate && c.store.fresh(metadataArtifact, metadataCacheTTL) {
		c.log.Info().Str("path", c.store.path(metadataArtifact)).Msg("loading station metadata from cache")
		t, err := c.store.load(metadataArtifact)
		if err != nil {
			return nil, err
		}
		if err := stationMetadataSchema.Validate(t); err != nil {
			return nil, err
		}
		c.log.Info().Dur("elapsed", time.Since(start)).Msg("station metadata ready (cache hit)")
		return t, nil
	}

	c.log.Info().Str("url", c.metadataURL).Msg("fetching station metadata")
	body, err := c.fetch(ctx, c.metadataURL)
	if err != nil {
		return nil, err
	}
	t, err := parseMetadataGeoJSON(body)
	if err != nil {
		return nil, err
	}
	t.Rename(metadataColumnMap)
	if err := stationMetadataSchema.Validate(t); err != nil {
		return nil, err
	}
	if err := c.store.save(metadataArtifact, t); err != nil {
		return nil, err
	}
	c.log.Info().Dur("elapsed", time.Since(start)).Msg("station metadata ready (cache miss)")
	return t, nil
}

// StationDataRequest carries the optional parameters of
// GetStationData. Dates are inclusive ISO 8601 bounds (YYYY-MM-DD);
// empty means unbounded.
type StationDataRequest struct {
	StartDate   string
	EndDate     string
	ForceUpdate bool
}

// GetStationData returns the daily series for one station, optionally
// filtered by date range. The cache always stores the unfiltered
// series, and cache hits go through the same rename/coerce step as
// fresh fetches so both paths yield identically shaped output.
func (c *Client) GetStationData(ctx context.Context, stationID string, req StationDataRequest) (*Table, error) {
	start := time.Now()

	if !req.ForceUpdate && c.store.fresh(stationID, stationCacheTTL) {
		c.log.Info().Str("station", stationID).Str("path", c.store.path(stationID)).Msg("loading station data from cache")
		t, err := c.store.load(stationID)
		if err != nil {
			return nil, err
		}
		if err := normalizeObservations(t); err != nil {
			return nil, err
		}
		t, err = t.FilterDates("datetime", req.StartDate, req.EndDate)
		if err != nil {
			return nil, err
		}
		c.log.Info().Str("station", stationID).Dur("elapsed", time.Since(start)).Msg("station data ready (cache hit)")
		return t, nil
	}

	url := fmt.Sprintf(c.stationURL, stationID)
	c.log.Info().Str("station", stationID).Str("url", url).Msg("fetching station data")
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	t, err := parseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// Validate before persisting so a malformed upstream response
	// never poisons the cache.
	if err := normalizeObservations(t); err != nil {
		return nil, err
	}
	if err := c.store.save(stationID, t); err != nil {
		return nil, err
	}
	t, err = t.FilterDates("datetime", req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("station", stationID).Dur("elapsed", time.Since(start)).Msg("station data ready (cache miss)")
	return t, nil
}

// GetAllStationData returns the combined daily series for every
// station, with a station_id column identifying each row's origin.
func (c *Client) GetAllStationData(ctx context.Context, forceUpdate bool) (*Table, error) {
	start := time.Now()

	if !forceUpdate && c.store.fresh(bulkArtifact, stationCacheTTL) {
		c.log.Info().Str("path", c.store.path(bulkArtifact)).Msg("loading combined station data from cache")
		t, err := c.store.load(bulkArtifact)
		if err != nil {
			return nil, err
		}
		if err := normalizeObservations(t); err != nil {
			return nil, err
		}
		c.log.Info().Dur("elapsed", time.Since(start)).Msg("combined station data ready (cache hit)")
		return t, nil
	}

	c.log.Info().Str("url", c.bulkURL).Msg("fetching combined station data")
	body, err := c.fetch(ctx, c.bulkURL)
	if err != nil {
		return nil, err
	}
	t, err := parseArchive(body)
	if err != nil {
		return nil, err
	}
	if err := normalizeObservations(t); err != nil {
		return nil, err
	}
	if err := c.store.save(bulkArtifact, t); err != nil {
		return nil, err
	}
	c.log.Info().Dur("elapsed", time.Since(start)).Msg("combined station data ready (cache miss)")
	return t, nil
}

// normalizeObservations applies the canonical rename and type
// coercion to an observation table. Only columns actually present are
// touched; absent canonical columns are not synthesized.
func normalizeObservations(t *Table) error {
	t.Rename(stationColumnMap)
	for _, f := range observationFields {
		if !t.Has(f.Name) {
			continue
		}
		if err := t.Cast(f.Name, f.Type); err != nil {
			return err
		}
	}
	if t.Has("station_id") {
		if err := t.Cast("station_id", TypeString); err != nil {
			return err
		}
	}
	return nil
}

// fetch issues a single GET with no retries. Any non-200 status or
// transport failure surfaces as a FetchError.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}
