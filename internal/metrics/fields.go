package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

// FieldMap names the exposition metrics that feed each snapshot field.
// An empty name disables that field.
type FieldMap struct {
	BlockHeight        string `json:"block_height,omitempty" yaml:"block_height,omitempty"`
	PeerCount          string `json:"peer_count,omitempty" yaml:"peer_count,omitempty"`
	TPS                string `json:"tps,omitempty" yaml:"tps,omitempty"`
	LatencyP99         string `json:"latency_p99_ms,omitempty" yaml:"latency_p99_ms,omitempty"`
	FinalizedHeight    string `json:"finalized_block_height,omitempty" yaml:"finalized_block_height,omitempty"`
	Service            string `json:"service,omitempty" yaml:"service,omitempty"`
	ServiceLabel       string `json:"service_label,omitempty" yaml:"service_label,omitempty"`
	TxCommits          string `json:"tx_commits,omitempty" yaml:"tx_commits,omitempty"`
	Uptime             string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	PendingTxs         string `json:"pending_txs,omitempty" yaml:"pending_txs,omitempty"`
	StateSyncProgress  string `json:"statesync_progress,omitempty" yaml:"statesync_progress,omitempty"`
	StateSyncTarget    string `json:"statesync_target,omitempty" yaml:"statesync_target,omitempty"`
	UpstreamValidators string `json:"upstream_validators,omitempty" yaml:"upstream_validators,omitempty"`

	// UptimeScale converts the uptime metric to seconds.
	UptimeScale float64 `json:"uptime_scale,omitempty" yaml:"uptime_scale,omitempty"`
}

// Profile names accepted by ProfileFieldMap.
const (
	ProfileDefault = "default"
	ProfileMonad   = "monad"
)

// DefaultFieldMap returns the generic metric names.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		BlockHeight:        "block_height",
		PeerCount:          "peer_count",
		TPS:                "tps",
		LatencyP99:         "latency_p99_ms",
		FinalizedHeight:    "finalized_block_height",
		Service:            "service_up",
		ServiceLabel:       "service",
		TxCommits:          "tx_commits",
		Uptime:             "uptime_seconds",
		PendingTxs:         "pending_txs",
		StateSyncProgress:  "statesync_progress",
		StateSyncTarget:    "statesync_target",
		UpstreamValidators: "upstream_validators",
		UptimeScale:        1,
	}
}

// MonadFieldMap returns the metric names exported by a Monad node.
func MonadFieldMap() FieldMap {
	return FieldMap{
		BlockHeight:        "monad_execution_ledger_block_num",
		PeerCount:          "monad_peer_disc_num_peers",
		LatencyP99:         "monad_bft_raptorcast_udp_secondary_broadcast_latency_p99_ms",
		TxCommits:          "monad_execution_ledger_num_tx_commits",
		Uptime:             "monad_total_uptime_us",
		PendingTxs:         "monad_bft_txpool_pool_tracked_txs",
		StateSyncProgress:  "monad_statesync_progress_estimate",
		StateSyncTarget:    "monad_statesync_last_target",
		UpstreamValidators: "monad_peer_disc_num_upstream_validators",
		UptimeScale:        1e-6,
	}
}

// ProfileFieldMap returns the field map for a named profile.
func ProfileFieldMap(profile string) (FieldMap, error) {
	switch profile {
	case "", ProfileDefault:
		return DefaultFieldMap(), nil
	case ProfileMonad:
		return MonadFieldMap(), nil
	default:
		return FieldMap{}, fmt.Errorf("metrics: unknown profile %q", profile)
	}
}

// Profiles lists the known profile names.
func Profiles() []string {
	return []string{ProfileDefault, ProfileMonad}
}

// Override returns m with every non-empty name in o applied on top.
func (m FieldMap) Override(o FieldMap) FieldMap {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&m.BlockHeight, o.BlockHeight)
	set(&m.PeerCount, o.PeerCount)
	set(&m.TPS, o.TPS)
	set(&m.LatencyP99, o.LatencyP99)
	set(&m.FinalizedHeight, o.FinalizedHeight)
	set(&m.Service, o.Service)
	set(&m.ServiceLabel, o.ServiceLabel)
	set(&m.TxCommits, o.TxCommits)
	set(&m.Uptime, o.Uptime)
	set(&m.PendingTxs, o.PendingTxs)
	set(&m.StateSyncProgress, o.StateSyncProgress)
	set(&m.StateSyncTarget, o.StateSyncTarget)
	set(&m.UpstreamValidators, o.UpstreamValidators)
	if o.UptimeScale > 0 {
		m.UptimeScale = o.UptimeScale
	}
	return m
}

// Extract builds a snapshot from parsed samples. Unknown names are ignored.
// A recognized sample whose value cannot be represented (NaN, infinite, or
// negative for a counter) is reported and leaves the field unset, so Merge
// keeps the previous value.
func Extract(samples []Sample, fm FieldMap, observedAt time.Time) (domain.MetricSnapshot, []error) {
	snap := domain.MetricSnapshot{ObservedAt: observedAt}
	var errs []error

	uints := map[string]uintField{}
	addUint := func(name string, f domain.Field, dst *uint64) {
		if name != "" {
			uints[name] = uintField{f, dst}
		}
	}
	addUint(fm.BlockHeight, domain.FieldBlockHeight, &snap.BlockHeight)
	addUint(fm.PeerCount, domain.FieldPeerCount, &snap.PeerCount)
	addUint(fm.FinalizedHeight, domain.FieldFinalizedHeight, &snap.FinalizedHeight)
	addUint(fm.PendingTxs, domain.FieldPendingTxs, &snap.PendingTxs)
	addUint(fm.StateSyncProgress, domain.FieldStateSyncProgress, &snap.StateSyncProgress)
	addUint(fm.StateSyncTarget, domain.FieldStateSyncTarget, &snap.StateSyncTarget)
	addUint(fm.UpstreamValidators, domain.FieldUpstreamValidators, &snap.UpstreamValidators)

	for _, s := range samples {
		switch {
		case s.Name == fm.Service && fm.Service != "":
			name := s.Labels[fm.ServiceLabel]
			if name == "" || !finite(s.Value) {
				errs = append(errs, fieldError(s, "service sample without usable label or value"))
				continue
			}
			if snap.Services == nil {
				snap.Services = map[string]bool{}
			}
			snap.Services[name] = s.Value > 0
			snap.Has |= domain.FieldServices

		case s.Name == fm.TxCommits && fm.TxCommits != "":
			v, ok := toUint(s.Value)
			if !ok {
				errs = append(errs, fieldError(s, "invalid counter value"))
				continue
			}
			snap.TxCommits = v
			snap.TxCommitsAt = s.Timestamp
			if snap.TxCommitsAt.IsZero() {
				snap.TxCommitsAt = observedAt
			}
			snap.Has |= domain.FieldTxCommits

		case s.Name == fm.TPS && fm.TPS != "":
			if !finite(s.Value) || s.Value < 0 {
				errs = append(errs, fieldError(s, "invalid rate value"))
				continue
			}
			snap.TPS = s.Value
			snap.Has |= domain.FieldTPS

		case s.Name == fm.LatencyP99 && fm.LatencyP99 != "":
			if !finite(s.Value) || s.Value < 0 {
				errs = append(errs, fieldError(s, "invalid latency value"))
				continue
			}
			snap.LatencyP99Ms = s.Value
			snap.Has |= domain.FieldLatencyP99

		case s.Name == fm.Uptime && fm.Uptime != "":
			if !finite(s.Value) || s.Value < 0 {
				errs = append(errs, fieldError(s, "invalid uptime value"))
				continue
			}
			scale := fm.UptimeScale
			if scale <= 0 {
				scale = 1
			}
			snap.UptimeSeconds = s.Value * scale
			snap.Has |= domain.FieldUptime

		default:
			u, known := uints[s.Name]
			if !known {
				continue
			}
			v, ok := toUint(s.Value)
			if !ok {
				errs = append(errs, fieldError(s, "invalid integer value"))
				continue
			}
			*u.dst = v
			snap.Has |= u.field
		}
	}
	return snap, errs
}

// Names returns the configured metric names in sorted order.
func (m FieldMap) Names() []string {
	var names []string
	for _, n := range []string{
		m.BlockHeight, m.PeerCount, m.TPS, m.LatencyP99, m.FinalizedHeight,
		m.Service, m.TxCommits, m.Uptime, m.PendingTxs, m.StateSyncProgress,
		m.StateSyncTarget, m.UpstreamValidators,
	} {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

type uintField struct {
	field domain.Field
	dst   *uint64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toUint(v float64) (uint64, bool) {
	if !finite(v) || v < 0 || v >= math.MaxUint64 {
		return 0, false
	}
	return uint64(v), true
}

func fieldError(s Sample, reason string) error {
	return &ParseError{Text: s.Name, Reason: reason}
}
