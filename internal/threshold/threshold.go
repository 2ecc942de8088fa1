// Package threshold decides how a sample compares against a usage limit.
// Only CPU and memory are checked; disk usage never triggers an alert.
package threshold

import (
	"fmt"
	"strings"

	"github.com/rathe12/SystemMonitor/internal/collector"
)

type Action int

const (
	Continue Action = iota
	Warn
	Stop
)

func (a Action) String() string {
	switch a {
	case Warn:
		return "warn"
	case Stop:
		return "stop"
	default:
		return "continue"
	}
}

// Policy is the optional limit configured at startup. A nil Limit disables evaluation.
type Policy struct {
	Limit        *uint
	StopOnBreach bool
}

// Enabled reports whether a limit is configured.
func (p Policy) Enabled() bool {
	return p.Limit != nil
}

// Breach is a single metric that exceeded the limit.
type Breach struct {
	Metric string
	Value  float64
}

type Decision struct {
	Action   Action
	Limit    uint
	Breaches []Breach
}

// Evaluate compares CPU and memory usage against the policy limit.
// A metric breaches only when it is strictly greater than the limit.
func Evaluate(sample *collector.Sample, policy Policy) Decision {
	if !policy.Enabled() {
		return Decision{Action: Continue}
	}

	limit := *policy.Limit
	decision := Decision{Action: Continue, Limit: limit}

	if sample.CPUPercent > float64(limit) {
		decision.Breaches = append(decision.Breaches, Breach{Metric: "CPU", Value: sample.CPUPercent})
	}
	if sample.MemoryPercent > float64(limit) {
		decision.Breaches = append(decision.Breaches, Breach{Metric: "Memory", Value: sample.MemoryPercent})
	}

	if len(decision.Breaches) == 0 {
		return decision
	}

	if policy.StopOnBreach {
		decision.Action = Stop
	} else {
		decision.Action = Warn
	}
	return decision
}

// Message describes the breached metrics, or is empty when nothing breached.
func (d Decision) Message() string {
	if len(d.Breaches) == 0 {
		return ""
	}

	parts := make([]string, 0, len(d.Breaches))
	for _, b := range d.Breaches {
		parts = append(parts, fmt.Sprintf("%s usage %.1f%%", b.Metric, b.Value))
	}
	return fmt.Sprintf("%s exceeded threshold of %d%%", strings.Join(parts, " and "), d.Limit)
}
