// Package fetch issues single timed GETs against mirror hosts and
// classifies the returned markup. Retry policy lives in the caller;
// this package never retries on its own.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mirrorfeed/mirrorfeed/internal/metrics"
)

// Config holds the HTTP client knobs.
type Config struct {
	// UserAgent is sent on every request. The mirrors serve a plain curl
	// agent without a challenge, so the default config mimics one.
	UserAgent string
	// Timeout bounds a single page fetch end to end.
	Timeout time.Duration
	// MinInterval is a global floor between requests, on top of the
	// crawler's own page and account delays. Zero disables it.
	MinInterval time.Duration
}

// Client fetches mirror pages via a shared Colly collector. Each fetch
// clones the base collector so handlers never leak between requests.
type Client struct {
	base    *colly.Collector
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient constructs a configured Client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.Async(true),
		colly.ParseHTTPErrorResponse(),
	)
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	return &Client{
		base:    base,
		limiter: limiter,
		logger:  logger,
	}
}

type pageResponse struct {
	body []byte
	err  error
}

// FetchPage retrieves one URL and classifies the markup. Error pages
// still carry a body on these mirrors, so classification runs whenever
// any body came back, regardless of status code.
func (c *Client) FetchPage(ctx context.Context, rawURL string) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.record(Result{Outcome: OutcomeNetwork, Err: err})
	}

	collector := c.base.Clone()
	respCh := make(chan pageResponse, 1)
	var once sync.Once
	send := func(resp pageResponse) {
		once.Do(func() { respCh <- resp })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(pageResponse{body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		var body []byte
		if r != nil {
			body = append([]byte{}, r.Body...)
		}
		send(pageResponse{body: body, err: err})
	})

	start := time.Now()
	if err := collector.Visit(rawURL); err != nil {
		return c.record(Result{Outcome: OutcomeNetwork, Err: err})
	}
	collector.Wait()

	var resp pageResponse
	select {
	case resp = <-respCh:
	default:
		return c.record(Result{Outcome: OutcomeNetwork, Err: errors.New("fetch produced no response")})
	}

	if err := ctx.Err(); err != nil {
		return c.record(Result{Outcome: OutcomeNetwork, Err: err})
	}
	if len(resp.body) == 0 {
		err := resp.err
		if err == nil {
			err = errors.New("empty response body")
		}
		return c.record(Result{Outcome: OutcomeNetwork, Err: err})
	}

	markup := string(resp.body)
	outcome := Classify(markup)
	c.logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.String("outcome", string(outcome)),
		zap.Int("bytes", len(resp.body)),
		zap.Duration("dur", time.Since(start)),
	)

	res := Result{Outcome: outcome}
	if outcome == OutcomeOK {
		res.HTML = markup
	}
	return c.record(res)
}

func (c *Client) record(res Result) Result {
	metrics.RecordPage(string(res.Outcome))
	return res
}
