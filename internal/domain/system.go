package domain

import "time"

// SystemStats is one host resource sample.
type SystemStats struct {
	Hostname string        `json:"hostname"`
	Uptime   time.Duration `json:"uptime"`

	CPUPercent float64 `json:"cpu_percent"`
	Load1      float64 `json:"load1"`

	MemUsedBytes  uint64  `json:"mem_used_bytes"`
	MemTotalBytes uint64  `json:"mem_total_bytes"`
	MemPercent    float64 `json:"mem_percent"`

	DiskPath      string  `json:"disk_path"`
	DiskUsedBytes uint64  `json:"disk_used_bytes"`
	DiskTotal     uint64  `json:"disk_total_bytes"`
	DiskPercent   float64 `json:"disk_percent"`

	NetRxBytesPerSec float64 `json:"net_rx_bps"`
	NetTxBytesPerSec float64 `json:"net_tx_bps"`

	// Units maps a systemd unit name to whether it is active.
	Units map[string]bool `json:"units,omitempty"`

	SampledAt time.Time `json:"sampled_at"`
}
