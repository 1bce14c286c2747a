package domain

import "errors"

// Sentinel errors shared by the producers. Producers wrap these so the
// aggregator and the CLI can classify failures without importing the
// producer packages.
//
//	return fmt.Errorf("metrics: line %d: %w", n, domain.ErrParse)
var (
	// ErrParse indicates a malformed metrics line or event record. The
	// offending field or message is dropped; it never ends a connection.
	ErrParse = errors.New("parse error")

	// ErrDisconnected indicates the persistent event connection was lost.
	ErrDisconnected = errors.New("disconnected")

	// ErrUnavailable indicates a source could not be reached at all
	// (timeout, connection refused, non-2xx response).
	ErrUnavailable = errors.New("source unavailable")
)
