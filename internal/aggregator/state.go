// Package aggregator owns the dashboard's view state. State is mutated
// only by the event loop goroutine; everything else sees ViewModel copies.
package aggregator

import (
	"maps"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/history"
)

const (
	DefaultTPSHistory      = 60
	DefaultBlockRows       = 10
	DefaultCounterSamples  = 10
	DefaultHeartbeatWindow = 2 * time.Second
)

// Options sizes the rolling windows. Zero values use the defaults.
type Options struct {
	TPSHistory      int
	BlockRows       int
	CounterSamples  int
	HeartbeatWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.TPSHistory <= 0 {
		o.TPSHistory = DefaultTPSHistory
	}
	if o.BlockRows <= 0 {
		o.BlockRows = DefaultBlockRows
	}
	if o.CounterSamples < 2 {
		o.CounterSamples = DefaultCounterSamples
	}
	if o.HeartbeatWindow <= 0 {
		o.HeartbeatWindow = DefaultHeartbeatWindow
	}
	return o
}

type counterSample struct {
	count uint64
	at    time.Time
}

// State is the single-writer aggregate behind the dashboard. It is not
// safe for concurrent use.
type State struct {
	opts Options

	metrics    domain.MetricSnapshot
	hasMetrics bool

	tps      *history.Buffer[float64]
	latency  *history.Buffer[float64]
	peers    *history.Buffer[uint64]
	counters *history.Buffer[counterSample]
	peakTPS  float64

	blocks    *blockTable
	head      uint64
	hasHead   bool
	lastPulse time.Time
	heartbeat float64

	system    domain.SystemStats
	hasSystem bool

	metricsConn domain.ConnectionState
	streamConn  domain.ConnectionState
	node        domain.NodeInfo

	now time.Time
}

// New returns an empty State. Both feeds start in PhaseConnecting.
func New(opts Options) *State {
	opts = opts.withDefaults()
	return &State{
		opts:        opts,
		tps:         history.New[float64](opts.TPSHistory),
		latency:     history.New[float64](opts.TPSHistory),
		peers:       history.New[uint64](2),
		counters:    history.New[counterSample](opts.CounterSamples),
		blocks:      newBlockTable(opts.BlockRows),
		metricsConn: domain.ConnectionState{Phase: domain.PhaseConnecting},
		streamConn:  domain.ConnectionState{Phase: domain.PhaseConnecting},
	}
}

// Apply dispatches one producer update.
func (s *State) Apply(u domain.Update) {
	switch u := u.(type) {
	case domain.MetricsUpdate:
		s.ApplyMetricSnapshot(u.Snapshot)
	case domain.BlockUpdate:
		s.ApplyBlockEvent(u.Event)
	case domain.SystemUpdate:
		s.ApplySystemStats(u.Stats)
	case domain.ConnectionUpdate:
		s.ApplyConnection(u.Source, u.State)
	case domain.NodeInfoUpdate:
		s.ApplyNodeInfo(u.Info)
	}
}

// ApplyMetricSnapshot merges a scrape into the known metrics. Fields the
// scrape did not carry keep their previous values.
func (s *State) ApplyMetricSnapshot(snap domain.MetricSnapshot) {
	s.metrics = snap.Merge(s.metrics)
	s.hasMetrics = true

	if rate, ok := s.sampleRate(snap); ok {
		s.tps.Push(rate)
		s.peakTPS = max(s.peakTPS, rate)
	}
	if snap.Has.Has(domain.FieldLatencyP99) {
		s.latency.Push(snap.LatencyP99Ms)
	}
	if snap.Has.Has(domain.FieldPeerCount) {
		s.peers.Push(snap.PeerCount)
	}
}

// sampleRate derives the transaction rate for one scrape: from the commit
// counter when the node exposes one, otherwise from the TPS gauge.
func (s *State) sampleRate(snap domain.MetricSnapshot) (float64, bool) {
	if snap.Has.Has(domain.FieldTxCommits) {
		return s.counterRate(counterSample{count: snap.TxCommits, at: snap.TxCommitsAt})
	}
	if snap.Has.Has(domain.FieldTPS) {
		return snap.TPS, true
	}
	return 0, false
}

// counterRate records c and returns the rate across the retained window.
// Samples not newer than the last one are ignored; a counter that went
// backwards (node restart) restarts the window.
func (s *State) counterRate(c counterSample) (float64, bool) {
	if last, ok := s.counters.Last(); ok {
		if !c.at.After(last.at) {
			return 0, false
		}
		if c.count < last.count {
			s.counters.Reset()
		}
	}
	s.counters.Push(c)

	if s.counters.Len() < 2 {
		return 0, false
	}
	oldest, _ := s.counters.At(0)
	elapsed := c.at.Sub(oldest.at).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	return float64(c.count-oldest.count) / elapsed, true
}

// ApplyBlockEvent upserts ev into the block table. The heartbeat restarts
// only when ev advances the head; repeats and replays do not pulse.
func (s *State) ApplyBlockEvent(ev domain.BlockEvent) {
	s.blocks.upsert(ev)
	if !s.hasHead || ev.Number > s.head {
		s.head = ev.Number
		s.hasHead = true
		s.lastPulse = ev.ReceivedAt
		if s.lastPulse.IsZero() {
			s.lastPulse = s.now
		}
		s.heartbeat = 1
	}
}

// ApplySystemStats replaces the host sample.
func (s *State) ApplySystemStats(st domain.SystemStats) {
	s.system = st
	s.system.Units = maps.Clone(st.Units)
	s.hasSystem = true
}

// ApplyConnection records a feed lifecycle transition.
func (s *State) ApplyConnection(src domain.Source, st domain.ConnectionState) {
	switch src {
	case domain.SourceMetrics:
		s.metricsConn = st
	case domain.SourceStream:
		s.streamConn = st
	}
}

// ApplyNodeInfo updates the client version and gas price. Empty values
// leave the previous ones in place.
func (s *State) ApplyNodeInfo(info domain.NodeInfo) {
	if info.ClientVersion != "" {
		s.node.ClientVersion = info.ClientVersion
	}
	if info.GasPriceWei != 0 {
		s.node.GasPriceWei = info.GasPriceWei
	}
}

// Tick advances the clock and recomputes time-based values.
func (s *State) Tick(now time.Time) {
	s.now = now
	if s.lastPulse.IsZero() {
		s.heartbeat = 0
		return
	}
	elapsed := now.Sub(s.lastPulse)
	s.heartbeat = min(1, max(0, 1-float64(elapsed)/float64(s.opts.HeartbeatWindow)))
}
