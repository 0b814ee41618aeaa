package snapshot

import (
	"log/slog"
	"time"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
)

// maxDepth bounds recursion below a path root.
const maxDepth = 16

// Collector captures snapshots. It is read-only against the platform and
// never returns an error: unreadable keys are omitted and failed live
// reads report Unknown.
type Collector struct {
	registry  platform.Registry
	probes    []platform.Probe
	apartment *platform.Apartment
	clock     platform.Clock
	logger    *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock sets the time source used for timestamps and sample delays.
func WithClock(c platform.Clock) Option {
	return func(col *Collector) {
		col.clock = c
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(col *Collector) {
		col.logger = l
	}
}

// NewCollector returns a collector over sys.
func NewCollector(sys *platform.System, opts ...Option) *Collector {
	c := &Collector{
		registry:  sys.Registry,
		probes:    sys.Probes,
		apartment: sys.Apartment,
		clock:     platform.WallClock{},
		logger:    slog.New(slog.DiscardHandler),
	}
	if c.apartment == nil {
		c.apartment = platform.NewApartment(nil)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect captures every value under both path roots, for both flows and
// both hives, recursively, plus one reading from each live probe.
func (c *Collector) Collect(ep endpoint.Endpoint) Snapshot {
	snap := Snapshot{DeviceID: ep.ID, TakenAt: c.clock.Now()}

	err := c.apartment.Do(func() error {
		snap.Live = platform.ReadAll(c.probes, ep.ID)
		return nil
	})
	if err != nil {
		c.logger.Debug("live reads unavailable", "device", ep.ID, "error", err)
		for _, p := range c.probes {
			snap.Live = append(snap.Live, platform.LiveRead{Label: p.Label(), Enhancements: ir.Unknown, Detail: err.Error()})
		}
	}

	key, ok := ep.Key()
	if !ok {
		c.logger.Debug("no correlation key, registry dump skipped", "device", ep.ID)
		return snap
	}

	for _, scope := range ir.Scopes() {
		for _, flow := range ir.Flows() {
			for _, root := range ir.PathRoots() {
				c.walk(&snap, scope, flow, endpoint.RootPath(key, flow, root), root.String(), 0)
			}
		}
	}
	sortRecords(snap.Records)
	c.logger.Debug("snapshot collected", "device", ep.ID, "records", len(snap.Records))
	return snap
}

func (c *Collector) walk(snap *Snapshot, scope ir.Scope, flow ir.Flow, path, rel string, depth int) {
	values, err := c.registry.Values(scope, path)
	if err != nil {
		c.logger.Debug("skip key", "hive", scope, "path", path, "error", err)
		return
	}
	for _, nv := range values {
		snap.Records = append(snap.Records, NewRecord(scope, flow, rel, nv.Name, nv.Value))
	}
	if depth >= maxDepth {
		return
	}
	subs, err := c.registry.Subkeys(scope, path)
	if err != nil {
		c.logger.Debug("skip subkeys", "hive", scope, "path", path, "error", err)
		return
	}
	for _, sub := range subs {
		c.walk(snap, scope, flow, path+`\`+sub, rel+`\`+sub, depth+1)
	}
}

// Sample collects repeats snapshots with delay between consecutive
// captures. repeats below 1 is treated as 1.
func (c *Collector) Sample(ep endpoint.Endpoint, repeats int, delay time.Duration) []Snapshot {
	if repeats < 1 {
		repeats = 1
	}
	out := make([]Snapshot, 0, repeats)
	for i := 0; i < repeats; i++ {
		if i > 0 && delay > 0 {
			c.clock.Sleep(delay)
		}
		out = append(out, c.Collect(ep))
	}
	return out
}

// Sleep pauses on the collector's clock.
func (c *Collector) Sleep(d time.Duration) {
	c.clock.Sleep(d)
}
