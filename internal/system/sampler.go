package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

// Sampler takes one host resource sample. Implementations return whatever
// they could collect together with a joined error describing the rest.
type Sampler interface {
	Sample(ctx context.Context) (domain.SystemStats, error)
}

// UnitChecker reports whether service units are active.
type UnitChecker interface {
	ActiveUnits(ctx context.Context, names []string) (map[string]bool, error)
}

// HostSampler reads host statistics through gopsutil.
type HostSampler struct {
	diskPath string
	units    []string
	checker  UnitChecker
	now      func() time.Time

	mu        sync.Mutex
	prevRx    uint64
	prevTx    uint64
	prevNetAt time.Time
}

// NewHostSampler creates a sampler for the filesystem holding diskPath.
// checker may be nil when no units are watched.
func NewHostSampler(diskPath string, units []string, checker UnitChecker) *HostSampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &HostSampler{
		diskPath: diskPath,
		units:    units,
		checker:  checker,
		now:      time.Now,
	}
}

// Sample implements Sampler.
func (s *HostSampler) Sample(ctx context.Context) (domain.SystemStats, error) {
	now := s.now()
	st := domain.SystemStats{DiskPath: s.diskPath, SampledAt: now}
	var errs []error

	if info, err := host.InfoWithContext(ctx); err == nil {
		st.Hostname = info.Hostname
		st.Uptime = time.Duration(info.Uptime) * time.Second
	} else {
		if name, herr := os.Hostname(); herr == nil {
			st.Hostname = name
		}
		errs = append(errs, fmt.Errorf("host: %w", err))
	}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	} else if err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		st.Load1 = avg.Load1
	} else {
		errs = append(errs, fmt.Errorf("load: %w", err))
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemUsedBytes = vm.Used
		st.MemTotalBytes = vm.Total
		st.MemPercent = vm.UsedPercent
	} else {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	}

	if du, err := disk.UsageWithContext(ctx, s.diskPath); err == nil {
		st.DiskUsedBytes = du.Used
		st.DiskTotal = du.Total
		st.DiskPercent = du.UsedPercent
	} else {
		errs = append(errs, fmt.Errorf("disk %s: %w", s.diskPath, err))
	}

	if counters, err := net.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		st.NetRxBytesPerSec, st.NetTxBytesPerSec = s.netRates(counters[0].BytesRecv, counters[0].BytesSent, now)
	} else if err != nil {
		errs = append(errs, fmt.Errorf("network: %w", err))
	}

	if len(s.units) > 0 && s.checker != nil {
		units, err := s.checker.ActiveUnits(ctx, s.units)
		if err != nil {
			errs = append(errs, fmt.Errorf("units: %w", err))
		}
		st.Units = units
	}

	return st, errors.Join(errs...)
}

// netRates converts cumulative byte counters into per-second rates
// relative to the previous sample. The first sample reports zero.
func (s *HostSampler) netRates(rx, tx uint64, now time.Time) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rxRate, txRate float64
	if !s.prevNetAt.IsZero() {
		if elapsed := now.Sub(s.prevNetAt).Seconds(); elapsed > 0 {
			if rx >= s.prevRx {
				rxRate = float64(rx-s.prevRx) / elapsed
			}
			if tx >= s.prevTx {
				txRate = float64(tx-s.prevTx) / elapsed
			}
		}
	}
	s.prevRx, s.prevTx, s.prevNetAt = rx, tx, now
	return rxRate, txRate
}
