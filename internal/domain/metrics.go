package domain

import (
	"maps"
	"time"
)

// Field identifies one recognized field of a MetricSnapshot.
type Field uint16

const (
	FieldBlockHeight Field = 1 << iota
	FieldPeerCount
	FieldTPS
	FieldLatencyP99
	FieldFinalizedHeight
	FieldServices
	FieldTxCommits
	FieldUptime
	FieldPendingTxs
	FieldStateSyncProgress
	FieldStateSyncTarget
	FieldUpstreamValidators
)

// Has reports whether every bit of f is set.
func (s Field) Has(f Field) bool { return s&f == f }

// MetricSnapshot is one parsed scrape of the node's metrics endpoint.
//
// A scrape may be partial: Has records which fields were actually present.
// Use Merge to carry the previously known values forward.
type MetricSnapshot struct {
	BlockHeight     uint64          `json:"block_height"`
	PeerCount       uint64          `json:"peer_count"`
	TPS             float64         `json:"tps"`
	LatencyP99Ms    float64         `json:"latency_p99_ms"`
	FinalizedHeight uint64          `json:"finalized_block_height"`
	Services        map[string]bool `json:"services,omitempty"`

	// TxCommits is a monotonically increasing transaction counter.
	// TxCommitsAt is the exposition timestamp of that sample, or the
	// scrape time when the line carried none.
	TxCommits   uint64    `json:"tx_commits,omitempty"`
	TxCommitsAt time.Time `json:"tx_commits_at,omitzero"`

	UptimeSeconds     float64 `json:"uptime_seconds,omitempty"`
	PendingTxs        uint64  `json:"pending_txs,omitempty"`
	StateSyncProgress uint64  `json:"statesync_progress,omitempty"`
	StateSyncTarget   uint64  `json:"statesync_target,omitempty"`

	UpstreamValidators uint64 `json:"upstream_validators,omitempty"`

	Has        Field     `json:"-"`
	ObservedAt time.Time `json:"observed_at"`
}

// Merge returns s with every field that s does not carry taken from prev.
// Service flags merge per key: a scrape that reports only some services
// keeps the last known state of the others.
func (s MetricSnapshot) Merge(prev MetricSnapshot) MetricSnapshot {
	out := s
	if !s.Has.Has(FieldBlockHeight) {
		out.BlockHeight = prev.BlockHeight
	}
	if !s.Has.Has(FieldPeerCount) {
		out.PeerCount = prev.PeerCount
	}
	if !s.Has.Has(FieldTPS) {
		out.TPS = prev.TPS
	}
	if !s.Has.Has(FieldLatencyP99) {
		out.LatencyP99Ms = prev.LatencyP99Ms
	}
	if !s.Has.Has(FieldFinalizedHeight) {
		out.FinalizedHeight = prev.FinalizedHeight
	}
	if !s.Has.Has(FieldTxCommits) {
		out.TxCommits = prev.TxCommits
		out.TxCommitsAt = prev.TxCommitsAt
	}
	if !s.Has.Has(FieldUptime) {
		out.UptimeSeconds = prev.UptimeSeconds
	}
	if !s.Has.Has(FieldPendingTxs) {
		out.PendingTxs = prev.PendingTxs
	}
	if !s.Has.Has(FieldStateSyncProgress) {
		out.StateSyncProgress = prev.StateSyncProgress
	}
	if !s.Has.Has(FieldStateSyncTarget) {
		out.StateSyncTarget = prev.StateSyncTarget
	}
	if !s.Has.Has(FieldUpstreamValidators) {
		out.UpstreamValidators = prev.UpstreamValidators
	}

	services := make(map[string]bool, len(prev.Services)+len(s.Services))
	maps.Copy(services, prev.Services)
	maps.Copy(services, s.Services)
	out.Services = services

	out.Has = s.Has | prev.Has
	return out
}

// SyncPercent returns state-sync progress as a percentage. A node that
// reports no sync target is considered fully synced.
func (s MetricSnapshot) SyncPercent() float64 {
	if s.StateSyncTarget == 0 {
		return 100
	}
	pct := float64(s.StateSyncProgress) / float64(s.StateSyncTarget) * 100
	return min(pct, 100)
}

// Synced reports whether state sync has (practically) completed.
func (s MetricSnapshot) Synced() bool {
	return s.SyncPercent() >= 99.99
}

// PeerHealth buckets the peer count into a coarse health label.
func (s MetricSnapshot) PeerHealth() string {
	switch {
	case s.PeerCount == 0:
		return "no peers"
	case s.PeerCount <= 10:
		return "low"
	case s.PeerCount <= 50:
		return "ok"
	default:
		return "healthy"
	}
}
