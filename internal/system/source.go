// Package system samples host resources and service unit health for the
// dashboard's system panel.
package system

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/logging"
)

const DefaultInterval = 2 * time.Second

// Source periodically samples the host and emits SystemUpdates.
type Source struct {
	sampler  Sampler
	interval time.Duration
	log      logrus.FieldLogger
	errLog   rate.Sometimes
}

// NewSource creates a Source. A non-positive interval uses DefaultInterval.
func NewSource(sampler Sampler, interval time.Duration, log logrus.FieldLogger) *Source {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Source{
		sampler:  sampler,
		interval: interval,
		log:      log.WithField("component", "system"),
		errLog:   rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

// Run samples immediately and then on every tick until ctx is done.
// Partial samples are still emitted; sampling errors are only logged.
func (s *Source) Run(ctx context.Context, out chan<- domain.Update) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		stats, err := s.sampler.Sample(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.errLog.Do(func() {
				s.log.WithError(err).Warn("incomplete system sample")
			})
		}
		if err := domain.Send(ctx, out, domain.SystemUpdate{Stats: stats}); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
