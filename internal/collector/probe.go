package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// Probe reads raw metrics from the operating system.
type Probe interface {
	// CPUPercent blocks for window and returns overall utilization over it.
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	VirtualMemory(ctx context.Context) (MemoryStat, error)
	DiskUsage(ctx context.Context, path string) (DiskStat, error)
	NetCounters(ctx context.Context) (NetCounters, error)
	HostInfo(ctx context.Context) (HostInfo, error)
}

// SystemProbe is the gopsutil backed Probe.
type SystemProbe struct{}

func NewSystemProbe() *SystemProbe {
	return &SystemProbe{}
}

func (SystemProbe) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	percent, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percent) == 0 {
		return 0, fmt.Errorf("failed to read cpu usage: no data")
	}
	return percent[0], nil
}

func (SystemProbe) VirtualMemory(ctx context.Context) (MemoryStat, error) {
	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStat{}, fmt.Errorf("failed to read virtual memory: %w", err)
	}

	return MemoryStat{
		UsedPercent: memInfo.UsedPercent,
		Used:        memInfo.Used,
		Total:       memInfo.Total,
	}, nil
}

func (SystemProbe) DiskUsage(ctx context.Context, path string) (DiskStat, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskStat{}, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}

	return DiskStat{
		Path:        usage.Path,
		UsedPercent: usage.UsedPercent,
		Used:        usage.Used,
		Total:       usage.Total,
	}, nil
}

func (SystemProbe) NetCounters(ctx context.Context) (NetCounters, error) {
	netStats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return NetCounters{}, fmt.Errorf("failed to read network counters: %w", err)
	}

	var counters NetCounters
	for _, stat := range netStats {
		counters.BytesRecv += stat.BytesRecv
		counters.BytesSent += stat.BytesSent
	}
	return counters, nil
}

func (SystemProbe) HostInfo(ctx context.Context) (HostInfo, error) {
	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostInfo{}, fmt.Errorf("failed to read host info: %w", err)
	}

	info := HostInfo{
		Hostname: hostInfo.Hostname,
		Platform: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion),
		Kernel:   hostInfo.KernelVersion,
	}

	// Load averages are unavailable on some platforms
	if loadAvg, err := load.AvgWithContext(ctx); err == nil {
		info.Load1 = loadAvg.Load1
		info.Load5 = loadAvg.Load5
		info.Load15 = loadAvg.Load15
	}

	return info, nil
}
