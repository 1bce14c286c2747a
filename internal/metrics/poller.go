// Package metrics polls a Prometheus-style text endpoint and turns each
// scrape into a domain.MetricSnapshot.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/logging"
)

const (
	DefaultURL               = "http://localhost:8889/metrics"
	DefaultInterval          = time.Second
	DefaultTimeout           = 2 * time.Second
	DefaultDegradedThreshold = 3

	maxBodyBytes = 16 << 20
)

// Options configures a Poller. Zero values fall back to the defaults.
type Options struct {
	URL               string
	Fields            FieldMap
	Interval          time.Duration
	Timeout           time.Duration
	DegradedThreshold int
	Logger            logrus.FieldLogger
	Client            *http.Client
}

// Poller scrapes the metrics endpoint on a fixed tick. It never backs off:
// a failed fetch is simply retried on the next tick.
type Poller struct {
	url       string
	fields    FieldMap
	interval  time.Duration
	timeout   time.Duration
	threshold int
	client    *http.Client
	log       logrus.FieldLogger
	parseLog  rate.Sometimes
	now       func() time.Time
}

// NewPoller creates a Poller from opts.
func NewPoller(opts Options) *Poller {
	p := &Poller{
		url:       opts.URL,
		fields:    opts.Fields,
		interval:  opts.Interval,
		timeout:   opts.Timeout,
		threshold: opts.DegradedThreshold,
		client:    opts.Client,
		log:       opts.Logger,
		parseLog:  rate.Sometimes{First: 3, Interval: 30 * time.Second},
		now:       time.Now,
	}
	if p.url == "" {
		p.url = DefaultURL
	}
	if p.fields == (FieldMap{}) {
		p.fields = DefaultFieldMap()
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.threshold <= 0 {
		p.threshold = DefaultDegradedThreshold
	}
	if p.client == nil {
		p.client = &http.Client{}
	}
	if p.log == nil {
		p.log = logging.Discard()
	}
	p.log = p.log.WithField("component", "metrics")
	return p
}

// Source identifies the feed this producer reports on.
func (p *Poller) Source() domain.Source { return domain.SourceMetrics }

// URL returns the scraped endpoint.
func (p *Poller) URL() string { return p.url }

// Fetch performs one scrape. Malformed lines are logged and skipped; only
// transport failures and non-2xx responses are returned as errors.
func (p *Poller) Fetch(ctx context.Context) (domain.MetricSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("metrics: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("metrics: request failed: %w: %w", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.MetricSnapshot{}, fmt.Errorf("metrics: unexpected status %d: %w", resp.StatusCode, domain.ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("metrics: failed to read body: %w: %w", domain.ErrUnavailable, err)
	}

	samples, errs := ParseExposition(string(body))
	snap, fieldErrs := Extract(samples, p.fields, p.now())
	errs = append(errs, fieldErrs...)
	if len(errs) > 0 {
		p.parseLog.Do(func() {
			p.log.WithError(errors.Join(errs...)).
				WithField("dropped", len(errs)).
				Warn("skipped malformed metric lines")
		})
	}
	return snap, nil
}

// Run fetches immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context, out chan<- domain.Update) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	phase := domain.PhaseConnecting
	failures := 0

	for {
		snap, err := p.Fetch(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()

		case err != nil:
			failures++
			p.log.WithError(err).WithField("failures", failures).Debug("metrics fetch failed")
			if failures >= p.threshold {
				if phase != domain.PhaseDegraded {
					p.log.WithField("failures", failures).Warn("metrics source degraded")
				}
				phase = domain.PhaseDegraded
				st := domain.Degraded(p.now(), failures, err)
				if err := domain.Send(ctx, out, domain.ConnectionUpdate{Source: domain.SourceMetrics, State: st}); err != nil {
					return err
				}
			}

		default:
			failures = 0
			if phase != domain.PhaseConnected {
				phase = domain.PhaseConnected
				p.log.Info("metrics source connected")
				st := domain.Connected(p.now())
				if err := domain.Send(ctx, out, domain.ConnectionUpdate{Source: domain.SourceMetrics, State: st}); err != nil {
					return err
				}
			}
			if err := domain.Send(ctx, out, domain.MetricsUpdate{Snapshot: snap}); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
