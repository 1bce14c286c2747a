package domain

import (
	"fmt"
	"time"
)

// Source names one of the two network feeds.
type Source string

const (
	SourceMetrics Source = "metrics"
	SourceStream  Source = "stream"
)

// Phase is the lifecycle phase of a feed connection.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseConnected
	PhaseReconnecting
	PhaseDegraded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseDegraded:
		return "degraded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ConnectionState is the user-visible state of a feed. Attempt and
// NextDelay are only meaningful while reconnecting.
type ConnectionState struct {
	Phase     Phase         `json:"phase"`
	Attempt   int           `json:"attempt,omitempty"`
	NextDelay time.Duration `json:"next_delay,omitempty"`
	Err       string        `json:"error,omitempty"`
	Since     time.Time     `json:"since"`
}

// Connected returns the state entered after a successful connect or fetch.
func Connected(now time.Time) ConnectionState {
	return ConnectionState{Phase: PhaseConnected, Since: now}
}

// Reconnecting returns the state entered while waiting to redial.
func Reconnecting(now time.Time, attempt int, next time.Duration, err error) ConnectionState {
	return ConnectionState{
		Phase:     PhaseReconnecting,
		Attempt:   attempt,
		NextDelay: next,
		Err:       errString(err),
		Since:     now,
	}
}

// Degraded returns the state of a polled source after repeated failures.
func Degraded(now time.Time, failures int, err error) ConnectionState {
	return ConnectionState{Phase: PhaseDegraded, Attempt: failures, Err: errString(err), Since: now}
}

// Label renders the state for a status line.
func (c ConnectionState) Label() string {
	switch c.Phase {
	case PhaseReconnecting:
		return fmt.Sprintf("reconnecting #%d in %s", c.Attempt, c.NextDelay.Round(time.Millisecond))
	case PhaseDegraded:
		return fmt.Sprintf("degraded (%d failures)", c.Attempt)
	default:
		return c.Phase.String()
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
