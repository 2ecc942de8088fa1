// Package reporter renders samples as a terminal table.
package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/rathe12/SystemMonitor/internal/collector"
	"github.com/rathe12/SystemMonitor/internal/logstore"
	"github.com/rathe12/SystemMonitor/internal/threshold"
)

const (
	Title       = "System Monitor"
	clearScreen = "\033[H\033[2J"
	timeLayout  = "2006-01-02 15:04:05"
)

type Severity int

const (
	Normal Severity = iota
	Elevated
	Critical
)

func (s Severity) colors() text.Colors {
	switch s {
	case Critical:
		return text.Colors{text.FgRed}
	case Elevated:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgGreen}
	}
}

// CPUSeverity: above 80 critical, above 50 elevated.
func CPUSeverity(percent float64) Severity {
	switch {
	case percent > 80:
		return Critical
	case percent > 50:
		return Elevated
	default:
		return Normal
	}
}

// MemorySeverity: above 90 critical, above 70 elevated.
func MemorySeverity(percent float64) Severity {
	switch {
	case percent > 90:
		return Critical
	case percent > 70:
		return Elevated
	default:
		return Normal
	}
}

type Reporter struct {
	out         io.Writer
	showNetwork bool
	color       bool
	hostname    string
}

type Option func(*Reporter)

// WithNetwork toggles the download and upload rows.
func WithNetwork(show bool) Option {
	return func(r *Reporter) { r.showNetwork = show }
}

// WithColor overrides terminal detection.
func WithColor(color bool) Option {
	return func(r *Reporter) { r.color = color }
}

func WithHostname(hostname string) Option {
	return func(r *Reporter) { r.hostname = hostname }
}

// New returns a reporter writing to out. Colors are enabled when out is a terminal.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:         out,
		showNetwork: true,
		color:       IsTerminal(out),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Clear erases previous output. It is a no-op when the output is not a terminal.
func (r *Reporter) Clear() {
	if !IsTerminal(r.out) {
		return
	}
	fmt.Fprint(r.out, clearScreen)
}

func (r *Reporter) Render(s *collector.Sample) error {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(Title)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Metric", "Value"})

	if r.color {
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Colors: text.Colors{text.FgCyan}},
		})
	}

	t.AppendRow(table.Row{"CPU Usage", r.paint(CPUSeverity(s.CPUPercent), fmt.Sprintf("%.1f%%", s.CPUPercent))})
	t.AppendRow(table.Row{"Memory Usage", r.paint(MemorySeverity(s.MemoryPercent),
		fmt.Sprintf("%.1f%% (used: %.2f MB of %.2f MB)", s.MemoryPercent, logstore.MB(s.MemoryUsed), logstore.MB(s.MemoryTotal)))})
	t.AppendRow(table.Row{"Disk Usage",
		fmt.Sprintf("%.1f%% (used: %.2f GB of %.2f GB)", s.DiskPercent, logstore.GB(s.DiskUsed), logstore.GB(s.DiskTotal))})

	if r.showNetwork && s.Network != nil {
		t.AppendRow(table.Row{"Download Speed", fmt.Sprintf("%.2f KB/s", s.Network.DownloadKBps)})
		t.AppendRow(table.Row{"Upload Speed", fmt.Sprintf("%.2f KB/s", s.Network.UploadKBps)})
	}

	if r.hostname != "" {
		t.SetCaption("%s @ %s", r.hostname, s.Timestamp.Format(timeLayout))
	} else {
		t.SetCaption("%s", s.Timestamp.Format(timeLayout))
	}

	t.Render()
	return nil
}

// Alert prints the outcome of a threshold evaluation that breached.
func (r *Reporter) Alert(d threshold.Decision) {
	switch d.Action {
	case threshold.Warn:
		fmt.Fprintln(r.out, r.paint(Elevated, "Warning: "+d.Message()))
	case threshold.Stop:
		fmt.Fprintln(r.out, r.paint(Critical, "Threshold exceeded, stopping: "+d.Message()))
	}
}

// Logged tells the operator where the sample was saved.
func (r *Reporter) Logged(path string) {
	fmt.Fprintf(r.out, "Saved to %s\n", path)
}

// LogFailed tells the operator that the sample could not be saved.
func (r *Reporter) LogFailed(err error) {
	fmt.Fprintln(r.out, r.paint(Critical, "Failed to save log: "+err.Error()))
}

func (r *Reporter) paint(sev Severity, s string) string {
	if !r.color {
		return s
	}
	return sev.colors().Sprint(s)
}
