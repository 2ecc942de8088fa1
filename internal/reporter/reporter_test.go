package reporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rathe12/SystemMonitor/internal/collector"
	"github.com/rathe12/SystemMonitor/internal/threshold"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(float64) Severity
		percent float64
		want    Severity
	}{
		{"cpu low", CPUSeverity, 10, Normal},
		{"cpu at 50", CPUSeverity, 50, Normal},
		{"cpu elevated", CPUSeverity, 51, Elevated},
		{"cpu at 80", CPUSeverity, 80, Elevated},
		{"cpu critical", CPUSeverity, 81, Critical},
		{"memory low", MemorySeverity, 70, Normal},
		{"memory elevated", MemorySeverity, 71, Elevated},
		{"memory at 90", MemorySeverity, 90, Elevated},
		{"memory critical", MemorySeverity, 95, Critical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.percent); got != tt.want {
				t.Errorf("severity(%v) = %v, want %v", tt.percent, got, tt.want)
			}
		})
	}
}

func sample() *collector.Sample {
	return &collector.Sample{
		CPUPercent:    42.5,
		MemoryPercent: 50,
		MemoryUsed:    2048 * 1024 * 1024,
		MemoryTotal:   4096 * 1024 * 1024,
		DiskPercent:   25,
		DiskUsed:      10 * 1024 * 1024 * 1024,
		DiskTotal:     40 * 1024 * 1024 * 1024,
		Network:       &collector.NetworkRate{DownloadKBps: 1024, UploadKBps: 12.5},
		Timestamp:     time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local),
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithHostname("box"))

	if err := r.Render(sample()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		Title,
		"CPU Usage", "42.5%",
		"50.0% (used: 2048.00 MB of 4096.00 MB)",
		"25.0% (used: 10.00 GB of 40.00 GB)",
		"Download Speed", "1024.00 KB/s",
		"Upload Speed", "12.50 KB/s",
		"box @ 2024-03-09 14:05:07",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected escape codes for non-terminal output:\n%q", out)
	}
}

func TestRenderWithoutNetwork(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithNetwork(false))

	if err := r.Render(sample()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "Download Speed") {
		t.Errorf("network rows rendered while disabled:\n%s", buf.String())
	}
}

func TestRenderColored(t *testing.T) {
	text.EnableColors()

	var buf bytes.Buffer
	r := New(&buf, WithColor(true))

	s := sample()
	s.CPUPercent = 95
	if err := r.Render(s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), text.FgRed.EscapeSeq()) {
		t.Errorf("expected red escape code in output:\n%q", buf.String())
	}
}

func TestAlert(t *testing.T) {
	limit := uint(80)
	s := sample()
	s.CPUPercent = 85

	var buf bytes.Buffer
	r := New(&buf)

	r.Alert(threshold.Evaluate(s, threshold.Policy{Limit: &limit}))
	if !strings.Contains(buf.String(), "Warning: CPU usage 85.0% exceeded threshold of 80%") {
		t.Errorf("unexpected warning output: %q", buf.String())
	}

	buf.Reset()
	r.Alert(threshold.Evaluate(s, threshold.Policy{Limit: &limit, StopOnBreach: true}))
	if !strings.Contains(buf.String(), "stopping") {
		t.Errorf("unexpected stop output: %q", buf.String())
	}

	buf.Reset()
	r.Alert(threshold.Decision{Action: threshold.Continue})
	if buf.Len() != 0 {
		t.Errorf("continue should print nothing, got %q", buf.String())
	}
}

func TestLogFeedback(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Logged("logs/logs-2024-03-09.json")
	r.LogFailed(errors.New("disk full"))
	r.Clear()

	out := buf.String()
	if !strings.Contains(out, "Saved to logs/logs-2024-03-09.json") || !strings.Contains(out, "disk full") {
		t.Errorf("unexpected feedback output: %q", out)
	}
	if strings.Contains(out, clearScreen) {
		t.Error("Clear wrote escape codes to a non-terminal")
	}
}
