package aggregator

import (
	"maps"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

// ViewModel is an immutable copy of the dashboard state. Every slice and
// map is owned by the ViewModel, so the renderer may hold it freely.
type ViewModel struct {
	Metrics    domain.MetricSnapshot
	HasMetrics bool

	// TPS and Latency are ordered oldest to newest.
	TPS        []float64
	Latency    []float64
	CurrentTPS float64
	PeakTPS    float64

	TPSTrend     domain.Trend
	LatencyTrend domain.Trend
	PeerTrend    domain.Trend

	// Blocks is ordered by number, highest first.
	Blocks    []domain.BlockEvent
	HeadBlock uint64

	FinalizedLag uint64
	Heartbeat    float64
	SyncPercent  float64
	Synced       bool
	Services     map[string]bool

	System    domain.SystemStats
	HasSystem bool

	MetricsConn domain.ConnectionState
	StreamConn  domain.ConnectionState
	Node        domain.NodeInfo

	Now time.Time
}

// Snapshot returns the current view.
func (s *State) Snapshot() ViewModel {
	vm := ViewModel{
		Metrics:    s.metrics,
		HasMetrics: s.hasMetrics,

		TPS:     s.tps.Values(),
		Latency: s.latency.Values(),
		PeakTPS: s.peakTPS,

		Blocks:    s.blocks.sorted(),
		HeadBlock: s.head,

		Heartbeat:   s.heartbeat,
		SyncPercent: s.metrics.SyncPercent(),
		Synced:      s.metrics.Synced(),
		Services:    maps.Clone(s.metrics.Services),

		System:    s.system,
		HasSystem: s.hasSystem,

		MetricsConn: s.metricsConn,
		StreamConn:  s.streamConn,
		Node:        s.node,

		Now: s.now,
	}
	vm.Metrics.Services = maps.Clone(s.metrics.Services)
	vm.System.Units = maps.Clone(s.system.Units)

	if n := len(vm.TPS); n > 0 {
		vm.CurrentTPS = vm.TPS[n-1]
	}
	vm.TPSTrend = domain.TrendOf(vm.TPS)
	vm.LatencyTrend = domain.TrendOf(vm.Latency)
	vm.PeerTrend = domain.TrendOf(s.peers.Values())

	if s.metrics.BlockHeight > s.metrics.FinalizedHeight {
		vm.FinalizedLag = s.metrics.BlockHeight - s.metrics.FinalizedHeight
	}
	return vm
}
