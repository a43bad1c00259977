package app

import (
	"fmt"
	"slices"
	"sync"
)

// WarningKind classifies a recoverable anomaly found while building tags.
type WarningKind string

// WarningUnknownActivity and related constants name the recoverable anomalies.
const (
	WarningUnknownActivity       WarningKind = "unknown_activity"
	WarningMalformedActivityCode WarningKind = "malformed_activity_code"
	WarningUnsupportedRole       WarningKind = "unsupported_role"
	WarningDuplicateActivity     WarningKind = "duplicate_activity"
	WarningUnknownCountry        WarningKind = "unknown_country"
	WarningSkippedRegistration   WarningKind = "skipped_registration"
)

const maxWarningSamples = 3

// WarningSummary aggregates all warnings of one kind.
type WarningSummary struct {
	Kind    WarningKind `json:"kind"`
	Count   int         `json:"count"`
	Samples []string    `json:"samples"`
}

// Diagnostics collects warnings during one pipeline run. A nil collector discards everything.
type Diagnostics struct {
	mu      sync.Mutex
	order   []WarningKind
	counts  map[WarningKind]int
	samples map[WarningKind][]string
}

// NewDiagnostics constructs an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		counts:  map[WarningKind]int{},
		samples: map[WarningKind][]string{},
	}
}

// Warn records one occurrence of kind.
func (d *Diagnostics) Warn(kind WarningKind, format string, args ...any) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.counts[kind]; !ok {
		d.order = append(d.order, kind)
	}
	d.counts[kind]++
	if len(d.samples[kind]) < maxWarningSamples {
		d.samples[kind] = append(d.samples[kind], fmt.Sprintf(format, args...))
	}
}

// Count returns the number of warnings of kind.
func (d *Diagnostics) Count(kind WarningKind) int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[kind]
}

// Total returns the number of warnings of every kind.
func (d *Diagnostics) Total() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}

// Summary lists kinds in first-seen order.
func (d *Diagnostics) Summary() []WarningSummary {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]WarningSummary, 0, len(d.order))
	for _, kind := range d.order {
		out = append(out, WarningSummary{
			Kind:    kind,
			Count:   d.counts[kind],
			Samples: slices.Clone(d.samples[kind]),
		})
	}
	return out
}
