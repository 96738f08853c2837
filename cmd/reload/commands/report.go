package commands

import (
	"encoding/json"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"go.trai.ch/reload/internal/core/domain"
)

// reportJSON is the machine-readable form of a report.
type reportJSON struct {
	RunID      string            `json:"run_id"`
	Status     string            `json:"status"`
	Unloaded   []string          `json:"unloaded"`
	Loaded     []string          `json:"loaded"`
	Failed     string            `json:"failed,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Deferred   map[string]string `json:"deferred,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

func newReportJSON(r *domain.Report) reportJSON {
	out := reportJSON{
		RunID:      r.RunID,
		Status:     string(r.Status),
		Unloaded:   domain.Strings(r.Unloaded),
		Loaded:     domain.Strings(r.Loaded),
		DurationMS: r.Duration.Milliseconds(),
	}
	if out.Unloaded == nil {
		out.Unloaded = []string{}
	}
	if out.Loaded == nil {
		out.Loaded = []string{}
	}
	if r.Failed != nil {
		out.Failed = r.Failed.String()
	}
	if r.Cause != nil {
		out.Cause = r.Cause.Error()
	}
	if len(r.Deferred) > 0 {
		out.Deferred = make(map[string]string, len(r.Deferred))
		for source, err := range r.Deferred {
			out.Deferred[source.String()] = err.Error()
		}
	}
	return out
}

func printReport(w io.Writer, r *domain.Report, asJSON bool) error {
	if asJSON {
		return writeJSON(w, newReportJSON(r))
	}

	lines := []string{
		"status:   " + string(r.Status) + " in " + r.Duration.Round(time.Millisecond).String(),
		"unloaded: " + list(domain.Strings(r.Unloaded)),
		"loaded:   " + list(domain.Strings(r.Loaded)),
	}
	if r.Failed != nil {
		lines = append(lines, "failed:   "+r.Failed.String())
	}
	for _, source := range slices.SortedFunc(maps.Keys(r.Deferred), domain.InternedString.Compare) {
		lines = append(lines, "skipped:  "+source.String()+": "+r.Deferred[source].Error())
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
