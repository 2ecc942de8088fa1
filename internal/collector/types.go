package collector

import "time"

// Sample is the result of one measurement cycle.
type Sample struct {
	CPUPercent float64

	MemoryPercent float64
	MemoryUsed    uint64
	MemoryTotal   uint64

	DiskPercent float64
	DiskUsed    uint64
	DiskTotal   uint64

	// Network is nil when network monitoring is disabled.
	Network *NetworkRate

	Timestamp time.Time
}

// NetworkRate holds throughput derived from two counter reads.
type NetworkRate struct {
	DownloadKBps float64
	UploadKBps   float64
}

type MemoryStat struct {
	UsedPercent float64
	Used        uint64
	Total       uint64
}

type DiskStat struct {
	Path        string
	UsedPercent float64
	Used        uint64
	Total       uint64
}

// NetCounters are cumulative byte counters summed over all interfaces.
type NetCounters struct {
	BytesRecv uint64
	BytesSent uint64
}

type HostInfo struct {
	Hostname string
	Platform string
	Kernel   string
	Load1    float64
	Load5    float64
	Load15   float64
}
