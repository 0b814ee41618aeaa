package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/platform"
)

// Discovery pairs the two captures of a discovery session with their diff.
type Discovery struct {
	Device    endpoint.Endpoint `json:"-"`
	Generated time.Time         `json:"generated"`
	A         Snapshot          `json:"snapshot_a"`
	B         Snapshot          `json:"snapshot_b"`
	Diff      Result            `json:"diff"`
}

// NewDiscovery diffs a against b.
func NewDiscovery(ep endpoint.Endpoint, a, b Snapshot, generated time.Time) Discovery {
	return Discovery{Device: ep, Generated: generated, A: a, B: b, Diff: Diff(a, b)}
}

// MarshalJSON emits the bundle with the device flattened in.
func (d Discovery) MarshalJSON() ([]byte, error) {
	type bundle struct {
		DeviceID   string    `json:"device_id"`
		DeviceName string    `json:"device_name,omitempty"`
		Flow       string    `json:"flow"`
		Generated  time.Time `json:"generated"`
		A          Snapshot  `json:"snapshot_a"`
		B          Snapshot  `json:"snapshot_b"`
		Diff       Result    `json:"diff"`
	}
	return json.Marshal(bundle{
		DeviceID:   d.Device.ID,
		DeviceName: d.Device.Name,
		Flow:       d.Device.Flow.String(),
		Generated:  d.Generated,
		A:          d.A,
		B:          d.B,
		Diff:       d.Diff,
	})
}

// WriteReport renders the human-readable discovery report.
func WriteReport(w io.Writer, d Discovery) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("Audio Enhancements Discovery Report")
	line("%s", strings.Repeat("=", 60))
	line("Generated: %s", d.Generated.Format(time.RFC3339))
	line("Device:    %s [%s]", d.Device.Name, d.Device.ID)
	line("Flow:      %s", d.Device.Flow)
	line("")

	line("Live reads (Disable_SysFx, 0 = enhancements on)")
	for _, label := range liveLabels(d.A, d.B) {
		la, _ := d.A.LiveRead(label)
		lb, _ := d.B.LiveRead(label)
		line("  %-14s A: %s | B: %s", label, formatLive(la), formatLive(lb))
	}
	line("")

	line("Registry diff summary")
	line("  Added:   %d", len(d.Diff.Added))
	line("  Removed: %d", len(d.Diff.Removed))
	line("  Changed: %d", len(d.Diff.Changed))
	line("  DWORD flips (0<->1): %d", len(d.Diff.Flips))
	line("  Disable_SysFx hits:  %d", len(d.Diff.DisableHits))

	section := func(title string, n int) bool {
		if n == 0 {
			return false
		}
		line("")
		line("%s", title)
		return true
	}
	if section("DWORD flips", len(d.Diff.Flips)) {
		for _, c := range d.Diff.Flips {
			line("  %s: %s -> %s", location(c.Before), c.Before.Preview, c.After.Preview)
		}
	}
	if section("Changed", len(d.Diff.Changed)) {
		for _, c := range d.Diff.Changed {
			line("  %s: %s %s -> %s %s", location(c.Before), c.Before.Type, c.Before.Preview, c.After.Type, c.After.Preview)
		}
	}
	if section("Added", len(d.Diff.Added)) {
		for _, r := range d.Diff.Added {
			line("  %s: %s %s", location(r), r.Type, r.Preview)
		}
	}
	if section("Removed", len(d.Diff.Removed)) {
		for _, r := range d.Diff.Removed {
			line("  %s: %s %s", location(r), r.Type, r.Preview)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func location(r Record) string {
	return fmt.Sprintf("%s %s %s %s", r.Scope, r.Flow.RegistryName(), r.Path, r.Name)
}

func formatLive(l platform.LiveRead) string {
	if l.Label == "" {
		return "n/a"
	}
	raw := "?"
	if l.Raw != nil {
		raw = fmt.Sprintf("%d", *l.Raw)
	}
	return fmt.Sprintf("raw=%s enhancements=%s", raw, l.Enhancements)
}

func liveLabels(a, b Snapshot) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, s := range []Snapshot{a, b} {
		for _, l := range s.Live {
			if !seen[l.Label] {
				seen[l.Label] = true
				labels = append(labels, l.Label)
			}
		}
	}
	return labels
}
