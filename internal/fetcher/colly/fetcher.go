// Package collyfetcher implements the page fetch capability using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/metrics"
)

const defaultTimeout = 15 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Waiter blocks until the next request slot is available.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Fetcher implements baseball.Fetcher using the Colly collector. Every request
// passes through the shared Waiter so all workers honor one politeness interval.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	waiter        Waiter
	logger        *zap.Logger
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// page is the outcome of a single visit as seen by the collector callbacks.
type page struct {
	status int
	body   []byte
	err    error
}

// New builds a Fetcher. A nil waiter disables politeness spacing.
//
// Clones share the base collector's HTTP client, so the timeout and transport
// are set here once and never touched per request.
func New(cfg Config, waiter Waiter, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(&retryTransport{base: newHTTPTransport(), backoff: transientRetryBackoff})

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		waiter:        waiter,
		logger:        logger.Named("fetcher"),
	}
}

// Fetch retrieves url and returns the body as text. Non-2xx responses and
// network failures are reported as *baseball.TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.waiter != nil {
		if err := f.waiter.Wait(ctx); err != nil {
			return "", &baseball.TransportError{URL: url, Err: err}
		}
	}

	var result page
	collector := f.buildCollector(ctx, &result)

	start := time.Now()
	err := f.runCollector(ctx, collector, url)
	if result.err == nil {
		result.err = err
	}
	metrics.ObserveFetch(url, statusLabel(result), len(result.body))

	if result.err != nil || result.status < 200 || result.status > 299 {
		f.logger.Debug("fetch failed",
			zap.String("url", url),
			zap.Int("status", result.status),
			zap.Error(result.err),
		)
		return "", &baseball.TransportError{URL: url, StatusCode: result.status, Err: result.err}
	}

	f.logger.Debug("fetched page",
		zap.String("url", url),
		zap.Int("bytes", len(result.body)),
		zap.Duration("duration", time.Since(start)),
	)
	return string(result.body), nil
}

func (f *Fetcher) buildCollector(ctx context.Context, result *page) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	f.configureCollectorHooks(collector, result)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, result *page) {
	hooks.OnResponse(func(r *colly.Response) {
		result.status = r.StatusCode
		result.body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.status = r.StatusCode
		}
		result.err = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) error {
	if err := collector.Visit(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("colly fetch canceled: %w", ctxErr)
		}
		return fmt.Errorf("colly visit failed: %w", err)
	}
	return nil
}

func statusLabel(p page) string {
	if p.status == 0 {
		return "error"
	}
	return strconv.Itoa(p.status)
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
