package logstore

import (
	"math"

	"github.com/rathe12/SystemMonitor/internal/collector"
)

// TimestampLayout is the format of Record.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	bytesPerMB = 1024 * 1024
	bytesPerGB = 1024 * 1024 * 1024
)

// Record is one sample as persisted in a daily log file.
type Record struct {
	CPUUsage      float64  `json:"CPU Usage (%)"`
	MemoryUsage   float64  `json:"Memory Usage (%)"`
	MemoryUsedMB  float64  `json:"Memory Used (MB)"`
	MemoryTotalMB float64  `json:"Memory Total (MB)"`
	DiskUsage     float64  `json:"Disk Usage (%)"`
	DiskUsedGB    float64  `json:"Disk Used (GB)"`
	DiskTotalGB   float64  `json:"Disk Total (GB)"`
	DownloadKBps  *float64 `json:"Download Speed (KB/s),omitempty"`
	UploadKBps    *float64 `json:"Upload Speed (KB/s),omitempty"`
	Timestamp     string   `json:"timestamp"`
}

// FromSample flattens a sample into a record with values rounded to two decimals.
func FromSample(s *collector.Sample) Record {
	rec := Record{
		CPUUsage:      Round(s.CPUPercent),
		MemoryUsage:   Round(s.MemoryPercent),
		MemoryUsedMB:  Round(MB(s.MemoryUsed)),
		MemoryTotalMB: Round(MB(s.MemoryTotal)),
		DiskUsage:     Round(s.DiskPercent),
		DiskUsedGB:    Round(GB(s.DiskUsed)),
		DiskTotalGB:   Round(GB(s.DiskTotal)),
		Timestamp:     s.Timestamp.Format(TimestampLayout),
	}

	if s.Network != nil {
		download := Round(s.Network.DownloadKBps)
		upload := Round(s.Network.UploadKBps)
		rec.DownloadKBps = &download
		rec.UploadKBps = &upload
	}

	return rec
}

func MB(b uint64) float64 {
	return float64(b) / bytesPerMB
}

func GB(b uint64) float64 {
	return float64(b) / bytesPerGB
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
