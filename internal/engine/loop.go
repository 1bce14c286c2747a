// Package engine runs the producers, feeds their updates to the aggregator
// from a single goroutine, and hands view snapshots to the renderer at a
// fixed cadence.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nathanbeddoewebdev/chainwatch/internal/aggregator"
	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/logging"
)

const (
	DefaultRenderInterval = 100 * time.Millisecond
	DefaultBuffer         = 256
)

// Producer emits updates until ctx is done.
type Producer interface {
	Run(ctx context.Context, out chan<- domain.Update) error
}

// Renderer draws a view snapshot. Render may block; the loop never waits
// on it.
type Renderer interface {
	Render(vm aggregator.ViewModel)
}

// sourced is implemented by producers that own a connection state.
type sourced interface {
	Source() domain.Source
}

// Options configures a Loop. Zero values use the defaults.
type Options struct {
	RenderInterval time.Duration
	Buffer         int
	Logger         logrus.FieldLogger
}

// Loop is the event loop. The goroutine calling Run is the only one that
// touches the aggregator state.
type Loop struct {
	state     *aggregator.State
	producers []Producer
	renderer  Renderer
	interval  time.Duration
	buffer    int
	log       logrus.FieldLogger
	now       func() time.Time
}

// New creates a Loop over state.
func New(state *aggregator.State, renderer Renderer, producers []Producer, opts Options) *Loop {
	l := &Loop{
		state:     state,
		producers: producers,
		renderer:  renderer,
		interval:  opts.RenderInterval,
		buffer:    opts.Buffer,
		log:       opts.Logger,
		now:       time.Now,
	}
	if l.interval <= 0 {
		l.interval = DefaultRenderInterval
	}
	if l.buffer <= 0 {
		l.buffer = DefaultBuffer
	}
	if l.log == nil {
		l.log = logging.Discard()
	}
	l.log = l.log.WithField("component", "engine")
	return l
}

// Run blocks until ctx is done. On cancellation it waits for every
// producer to return, applies whatever updates are still queued, renders
// one final frame and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	updates := make(chan domain.Update, l.buffer)

	var g errgroup.Group
	for _, p := range l.producers {
		g.Go(func() error {
			l.runProducer(ctx, p, updates)
			return nil
		})
	}
	producersDone := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(producersDone)
	}()

	frames := make(chan aggregator.ViewModel, 1)
	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		for vm := range frames {
			l.renderer.Render(vm)
		}
	}()

	publish := func() {
		l.state.Tick(l.now())
		vm := l.state.Snapshot()
		select {
		case <-frames:
		default:
		}
		frames <- vm
	}

	ticker := time.NewTicker(l.interval)
	publish()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case u := <-updates:
			l.state.Apply(u)
		case <-ticker.C:
			publish()
		}
	}
	ticker.Stop()

	l.log.Debug("shutting down, waiting for producers")
	l.drain(updates, producersDone)
	publish()
	close(frames)
	<-renderDone
	return nil
}

// drain applies queued updates until every producer has returned and the
// channel is empty.
func (l *Loop) drain(updates <-chan domain.Update, producersDone <-chan struct{}) {
	for {
		select {
		case u := <-updates:
			l.state.Apply(u)
		case <-producersDone:
			for {
				select {
				case u := <-updates:
					l.state.Apply(u)
				default:
					return
				}
			}
		}
	}
}

// runProducer runs p and converts an unexpected exit into a Failed state
// for its feed. Other producers keep running.
func (l *Loop) runProducer(ctx context.Context, p Producer, out chan<- domain.Update) {
	err := p.Run(ctx, out)
	if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return
	}

	log := l.log.WithError(err)
	s, ok := p.(sourced)
	if ok {
		log = log.WithField("source", s.Source())
	}
	log.Error("producer stopped")

	if ok {
		st := domain.ConnectionState{Phase: domain.PhaseFailed, Err: err.Error(), Since: l.now()}
		_ = domain.Send(ctx, out, domain.ConnectionUpdate{Source: s.Source(), State: st})
	}
}
