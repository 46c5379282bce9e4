package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/listat/internal/fetch"
	"github.com/nao1215/listat/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "listat"

	// DefaultBaseURL is the LiveInternet statistics root.
	DefaultBaseURL = "https://www.liveinternet.ru/stat/"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultBatchSize is the number of sources loaded concurrently.
	DefaultBatchSize = 10

	// DefaultRateLimit is requests per second across the whole batch.
	// LiveInternet is a shared public service; two requests a second keeps
	// a ten source batch under five seconds.
	DefaultRateLimit = 2.0

	// DefaultMaxBodySize limits the page size read from a source.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultUserAgent identifies listat in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent
)

// Config holds the fetch options of one listat run. It is populated from CLI
// flags and passed down explicitly. Output selection is not part of it; the
// history command renders stored batches without a Config.
type Config struct {
	// Period selects weekly or monthly statistics.
	Period model.Period

	// InputDir reads saved pages instead of fetching.
	InputDir string

	// BatchSize is the number of sources loaded concurrently.
	BatchSize int

	// RateLimit is the maximum requests per second. 0 disables the limit.
	RateLimit float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxBodySize is the maximum accepted page size in bytes.
	MaxBodySize int64

	// UserAgent is sent with every request.
	UserAgent string

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// ConfigFilePath is the sources file. Empty means search for .listat in
	// the current directory, then the home directory.
	ConfigFilePath string

	// Sources is the sources file in effect.
	Sources *File

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB stores ready batches in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values and the built-in sources.
func NewConfig() *Config {
	return &Config{
		Period:      model.PeriodWeek,
		BatchSize:   DefaultBatchSize,
		RateLimit:   DefaultRateLimit,
		Timeout:     DefaultTimeout,
		MaxBodySize: DefaultMaxBodySize,
		UserAgent:   DefaultUserAgent,
		Sources:     DefaultFile(),
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for listat, where the history
// database lives.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := model.ParsePeriod(string(c.Period)); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Sources == nil {
		return ErrNoSources
	}
	if err := c.Sources.Validate(); err != nil {
		return err
	}
	return nil
}

// Requests builds one fetch request per configured source.
func (c *Config) Requests() ([]fetch.Request, error) {
	if c.Sources == nil {
		return nil, ErrNoSources
	}
	baseURL := c.Sources.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	reqs := make([]fetch.Request, 0, len(c.Sources.Sources))
	for _, src := range c.Sources.Sources {
		u, err := fetch.PageURL(baseURL, src.Path, c.Period)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Path, err)
		}
		reqs = append(reqs, fetch.Request{
			SourceID: src.SourceID(),
			URL:      u,
			Cookie:   src.Cookie,
			Headers:  src.Headers,
		})
	}
	return reqs, nil
}
