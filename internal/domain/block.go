package domain

import "time"

// BlockEvent is a single block notification from the event stream.
//
// Numbers are non-decreasing within one connection but may gap or repeat
// across reconnects. The same number may also be delivered twice within a
// connection when a header is followed by its full body; the later event
// carries the more complete fields.
type BlockEvent struct {
	Number     uint64    `json:"number"`
	Hash       string    `json:"hash"`
	TxCount    uint64    `json:"tx_count"`
	GasUsed    uint64    `json:"gas_used"`
	GasLimit   uint64    `json:"gas_limit"`
	Timestamp  time.Time `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at"`
}

// GasPercent returns gas used as a percentage of the block gas limit.
func (b BlockEvent) GasPercent() float64 {
	if b.GasLimit == 0 {
		return 0
	}
	return float64(b.GasUsed) / float64(b.GasLimit) * 100
}

// NodeInfo holds slow-changing facts reported over the event connection.
type NodeInfo struct {
	ClientVersion string `json:"client_version,omitempty"`
	GasPriceWei   uint64 `json:"gas_price_wei,omitempty"`
}

// GasPriceGwei converts the gas price to gwei for display.
func (n NodeInfo) GasPriceGwei() float64 {
	return float64(n.GasPriceWei) / 1e9
}
