package snapshot

import (
	"testing"
	"time"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/testutil"
)

const (
	testDeviceID = "{0.0.0.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}"
	testKey      = "{83a9be54-901e-4429-993b-c9088e3028a0}"
	sysFxName    = "{e4870e26-3cc5-4cd2-ba46-ca0a9a70ed04},2"
)

var testStart = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testEndpoint() endpoint.Endpoint {
	return endpoint.Endpoint{ID: testDeviceID, Flow: ir.Playback, Name: "Speakers"}
}

type testRig struct {
	mem   *platform.Memory
	probe *platform.StaticProbe
	clock *testutil.FakeClock
	col   *Collector
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	mem := platform.NewMemory()
	clock := testutil.NewFakeClock(testStart)
	mem.SetClock(clock.Now)
	probe := platform.NewStaticProbe(platform.LabelPropertyStore)
	sys := &platform.System{Registry: mem, Probes: []platform.Probe{probe}}
	return &testRig{
		mem:   mem,
		probe: probe,
		clock: clock,
		col:   NewCollector(sys, WithClock(clock)),
	}
}

func (r *testRig) fx(nested ...string) string {
	return endpoint.RootPath(testKey, ir.Playback, ir.EffectsPath, nested...)
}

func (r *testRig) props() string {
	return endpoint.RootPath(testKey, ir.Playback, ir.BasePath)
}

func rec(scope ir.Scope, path, name string, v ir.Value) Record {
	return NewRecord(scope, ir.Playback, path, name, v)
}

func snapOf(records ...Record) Snapshot {
	s := Snapshot{DeviceID: testDeviceID, TakenAt: testStart, Records: records}
	sortRecords(s.Records)
	return s
}
