package stream

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

// RecordFields holds the gjson paths of each block field inside a record.
type RecordFields struct {
	Number    string `json:"number,omitempty" yaml:"number,omitempty"`
	Hash      string `json:"hash,omitempty" yaml:"hash,omitempty"`
	TxCount   string `json:"tx_count,omitempty" yaml:"tx_count,omitempty"`
	GasUsed   string `json:"gas_used,omitempty" yaml:"gas_used,omitempty"`
	GasLimit  string `json:"gas_limit,omitempty" yaml:"gas_limit,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// DefaultRecordFields returns the paths of the flat record layout.
func DefaultRecordFields() RecordFields {
	return RecordFields{
		Number:    "number",
		Hash:      "hash",
		TxCount:   "tx_count",
		GasUsed:   "gas_used",
		GasLimit:  "gas_limit",
		Timestamp: "timestamp",
	}
}

// rpcBlockFields maps an eth_getBlockByNumber result or a newHeads header.
var rpcBlockFields = RecordFields{
	Number:    "number",
	Hash:      "hash",
	TxCount:   "transactions.#",
	GasUsed:   "gasUsed",
	GasLimit:  "gasLimit",
	Timestamp: "timestamp",
}

// Override returns f with every non-empty path in o applied on top.
func (f RecordFields) Override(o RecordFields) RecordFields {
	for _, p := range []struct {
		dst *string
		src string
	}{
		{&f.Number, o.Number},
		{&f.Hash, o.Hash},
		{&f.TxCount, o.TxCount},
		{&f.GasUsed, o.GasUsed},
		{&f.GasLimit, o.GasLimit},
		{&f.Timestamp, o.Timestamp},
	} {
		if p.src != "" {
			*p.dst = p.src
		}
	}
	return f
}

// DecodeError describes a message that could not be turned into an
// update. It wraps domain.ErrParse.
type DecodeError struct {
	Reason  string
	Payload string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: decode: %s: %s", e.Reason, e.Payload)
}

func (e *DecodeError) Unwrap() error { return domain.ErrParse }

func decodeError(reason string, payload []byte) *DecodeError {
	const max = 120
	p := string(payload)
	if len(p) > max {
		p = p[:max] + "..."
	}
	return &DecodeError{Reason: reason, Payload: p}
}

// decodeRecord decodes one flat JSON record frame.
func decodeRecord(msg []byte, f RecordFields, receivedAt time.Time) (domain.BlockEvent, error) {
	if !gjson.ValidBytes(msg) {
		return domain.BlockEvent{}, decodeError("invalid json", msg)
	}
	ev, err := decodeBlock(gjson.ParseBytes(msg), f, receivedAt)
	if err != nil {
		return domain.BlockEvent{}, decodeError(err.Error(), msg)
	}
	return ev, nil
}

// decodeBlock extracts a block from r. Only the number is required.
func decodeBlock(r gjson.Result, f RecordFields, receivedAt time.Time) (domain.BlockEvent, error) {
	ev := domain.BlockEvent{ReceivedAt: receivedAt}

	num := r.Get(f.Number)
	if !num.Exists() {
		return ev, fmt.Errorf("missing %s", f.Number)
	}
	n, err := parseQuantity(num)
	if err != nil {
		return ev, fmt.Errorf("%s: %w", f.Number, err)
	}
	ev.Number = n

	if f.Hash != "" {
		ev.Hash = r.Get(f.Hash).String()
	}

	for _, q := range []struct {
		path string
		dst  *uint64
	}{
		{f.TxCount, &ev.TxCount},
		{f.GasUsed, &ev.GasUsed},
		{f.GasLimit, &ev.GasLimit},
	} {
		if q.path == "" {
			continue
		}
		v := r.Get(q.path)
		if !v.Exists() {
			continue
		}
		if *q.dst, err = parseQuantity(v); err != nil {
			return ev, fmt.Errorf("%s: %w", q.path, err)
		}
	}

	if f.Timestamp != "" {
		if ts := r.Get(f.Timestamp); ts.Exists() {
			if ev.Timestamp, err = parseTimestamp(ts); err != nil {
				return ev, fmt.Errorf("%s: %w", f.Timestamp, err)
			}
		}
	}
	return ev, nil
}

// parseQuantity accepts a JSON number, a decimal string or a 0x-prefixed
// hex string.
func parseQuantity(r gjson.Result) (uint64, error) {
	switch r.Type {
	case gjson.Number:
		if v, err := strconv.ParseUint(r.Raw, 10, 64); err == nil {
			return v, nil
		}
		if r.Num < 0 || r.Num != float64(uint64(r.Num)) {
			return 0, fmt.Errorf("not a non-negative integer: %s", r.Raw)
		}
		return uint64(r.Num), nil
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
			if hex == "" {
				return 0, nil
			}
			return strconv.ParseUint(hex, 16, 64)
		}
		return strconv.ParseUint(s, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %s quantity", r.Type)
	}
}

// parseTimestamp accepts unix seconds in any quantity form, or RFC 3339.
func parseTimestamp(r gjson.Result) (time.Time, error) {
	if secs, err := parseQuantity(r); err == nil {
		return time.Unix(int64(secs), 0), nil
	}
	if r.Type == gjson.String {
		return time.Parse(time.RFC3339, r.Str)
	}
	return time.Time{}, fmt.Errorf("unexpected timestamp %s", r.Raw)
}

func hexQuantity(n uint64) string {
	return "0x" + strconv.FormatUint(n, 16)
}
