package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultDiskPath      = "/"
	DefaultCPUWindow     = time.Second
	DefaultNetworkWindow = time.Second
)

// ErrProbe marks failures of the underlying OS probe.
var ErrProbe = errors.New("probe failed")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Collector runs one measurement cycle per Collect call.
type Collector struct {
	probe         Probe
	diskPath      string
	cpuWindow     time.Duration
	networkWindow time.Duration
	now           func() time.Time
	sleep         Sleeper
	logger        *slog.Logger
}

type Option func(*Collector)

func WithDiskPath(path string) Option {
	return func(c *Collector) {
		if path != "" {
			c.diskPath = path
		}
	}
}

func WithCPUWindow(d time.Duration) Option {
	return func(c *Collector) { c.cpuWindow = d }
}

func WithNetworkWindow(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.networkWindow = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

func WithSleeper(sleep Sleeper) Option {
	return func(c *Collector) { c.sleep = sleep }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

func New(probe Probe, opts ...Option) *Collector {
	c := &Collector{
		probe:         probe,
		diskPath:      DefaultDiskPath,
		cpuWindow:     DefaultCPUWindow,
		networkWindow: DefaultNetworkWindow,
		now:           time.Now,
		sleep:         SleepContext,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers CPU, memory, disk and optionally network metrics.
// The CPU window always elapses; the network window only when includeNetwork is set.
func (c *Collector) Collect(ctx context.Context, includeNetwork bool) (*Sample, error) {
	sample := &Sample{}

	if err := c.collectCPU(ctx, sample); err != nil {
		return nil, err
	}
	if err := c.collectMemory(ctx, sample); err != nil {
		return nil, err
	}
	if err := c.collectDisk(ctx, sample); err != nil {
		return nil, err
	}
	if includeNetwork {
		if err := c.collectNetwork(ctx, sample); err != nil {
			return nil, err
		}
	}

	sample.Timestamp = c.now()
	return sample, nil
}

// Host returns descriptive host information from the probe.
func (c *Collector) Host(ctx context.Context) (HostInfo, error) {
	info, err := c.probe.HostInfo(ctx)
	if err != nil {
		return HostInfo{}, fmt.Errorf("%w: %w", ErrProbe, err)
	}
	return info, nil
}

func (c *Collector) collectCPU(ctx context.Context, sample *Sample) error {
	percent, err := c.probe.CPUPercent(ctx, c.cpuWindow)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}
	sample.CPUPercent = percent
	return nil
}

func (c *Collector) collectMemory(ctx context.Context, sample *Sample) error {
	memInfo, err := c.probe.VirtualMemory(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}
	sample.MemoryPercent = memInfo.UsedPercent
	sample.MemoryUsed = memInfo.Used
	sample.MemoryTotal = memInfo.Total
	return nil
}

func (c *Collector) collectDisk(ctx context.Context, sample *Sample) error {
	usage, err := c.probe.DiskUsage(ctx, c.diskPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}
	sample.DiskPercent = usage.UsedPercent
	sample.DiskUsed = usage.Used
	sample.DiskTotal = usage.Total
	return nil
}

func (c *Collector) collectNetwork(ctx context.Context, sample *Sample) error {
	before, err := c.probe.NetCounters(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}

	if err := c.sleep(ctx, c.networkWindow); err != nil {
		return err
	}

	after, err := c.probe.NetCounters(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbe, err)
	}

	download, recvReset := Rate(before.BytesRecv, after.BytesRecv, c.networkWindow)
	upload, sentReset := Rate(before.BytesSent, after.BytesSent, c.networkWindow)
	if recvReset || sentReset {
		c.logger.WarnContext(ctx, "network counter went backwards, reporting zero",
			slog.Bool("recv_reset", recvReset),
			slog.Bool("sent_reset", sentReset),
		)
	}

	sample.Network = &NetworkRate{
		DownloadKBps: download,
		UploadKBps:   upload,
	}
	return nil
}

// Rate converts two cumulative byte counter reads taken window apart into KB/s.
// A counter that decreased (interface reset or wraparound) yields 0 and reset=true.
func Rate(before, after uint64, window time.Duration) (kbps float64, reset bool) {
	if after < before {
		return 0, true
	}
	seconds := window.Seconds()
	if seconds <= 0 {
		seconds = 1
	}
	return float64(after-before) / 1024 / seconds, false
}

// SleepContext is a Sleeper backed by a timer.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
