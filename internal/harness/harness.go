package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/audioctl/internal/catalog"
	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/engine"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/snapshot"
	"github.com/roach88/audioctl/internal/testutil"
	"github.com/roach88/audioctl/internal/vendor"
)

// Epoch is the fake clock's start for every run.
var Epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// CatalogFile is the catalog's name inside the run directory.
const CatalogFile = "vendor_toggles.ini"

// Harness runs one scenario against an in-memory registry with a fake
// clock, so verification and resampling never sleep.
type Harness struct {
	scenario *Scenario
	mem      *platform.Memory
	clock    *testutil.FakeClock
	svc      *vendor.Service
	captures map[string]snapshot.Snapshot
	logger   *slog.Logger
}

// Run executes s with its catalog under dir and returns the result.
// Step failures that do not match an expect clause are reported in the
// result; the error return is for runs that could not start.
func Run(ctx context.Context, s *Scenario, dir string) (*Result, error) {
	path := filepath.Join(dir, CatalogFile)
	if s.Catalog != "" {
		if err := os.WriteFile(path, []byte(s.Catalog), 0o644); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	clock := testutil.NewFakeClock(Epoch)
	sys, mem := s.Registry.Simulated()
	mem.SetClock(clock.Now)

	logger := slog.New(slog.DiscardHandler)
	h := &Harness{
		scenario: s,
		mem:      mem,
		clock:    clock,
		svc:      vendor.New(catalog.NewStore(path), sys, vendor.WithClock(clock), vendor.WithLogger(logger)),
		captures: map[string]snapshot.Snapshot{},
		logger:   logger,
	}

	result := NewResult()
	for i, step := range s.Flow {
		outcome, err := h.execute(ctx, step)
		if err != nil {
			outcome["error"] = errorCode(err)
		}
		result.AddTrace(i+1, step.Do, outcome)
		for _, msg := range checkExpect(step, outcome, err) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Do, msg))
		}
	}

	cat, err := h.svc.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load final catalog: %w", err)
	}
	result.Catalog = catalog.Format(cat)

	for _, msg := range EvaluateAssertions(s.Assertions, &AssertionContext{Catalog: cat, Registry: mem, Endpoints: h.endpoints()}) {
		result.AddError(msg)
	}
	return result, nil
}

func errorCode(err error) string {
	if code, ok := engine.CodeOf(err); ok {
		return string(code)
	}
	return "ERROR"
}

func (h *Harness) endpoints() []endpoint.Endpoint {
	out := make([]endpoint.Endpoint, 0, len(h.scenario.Registry.Endpoints))
	for _, fe := range h.scenario.Registry.Endpoints {
		ep, _ := h.scenario.Registry.Endpoint(fe.ID)
		out = append(out, ep)
	}
	return out
}

func (h *Harness) endpoint(step Step) endpoint.Endpoint {
	id := step.Device
	if id == "" {
		id = h.scenario.Registry.Endpoints[0].ID
	}
	ep, _ := h.scenario.Registry.Endpoint(id)
	return ep
}

func (h *Harness) capture(label string) snapshot.Snapshot {
	return h.captures[label]
}

// execute runs one step. The returned outcome is never nil.
func (h *Harness) execute(ctx context.Context, step Step) (map[string]any, error) {
	ep := h.endpoint(step)
	out := map[string]any{}

	switch step.Do {
	case DoSet:
		t, _ := ir.ParseValueType(step.Type)
		v, _ := ir.ParseValue(t, step.Data)
		h.mem.Set(step.Hive, registryPath(ep, step.Subkey), step.Name, v)

	case DoDelete:
		h.mem.Delete(step.Hive, registryPath(ep, step.Subkey), step.Name)

	case DoDenyWrites:
		h.mem.DenyWrites(step.Hive, step.Deny)

	case DoCapture:
		snap := h.svc.Capture(ep)
		h.captures[step.Label] = snap
		out["records"] = len(snap.Records)

	case DoLearn:
		res, err := h.svc.LearnMain(ctx, ep, h.capture(step.Captures[0]), h.capture(step.Captures[1]))
		if err != nil {
			return out, err
		}
		learnOutcome(out, res)

	case DoLearnFX:
		c := vendor.Captures{A: h.capture(step.Captures[0]), B: h.capture(step.Captures[1])}
		if len(step.Captures) == 4 {
			a2, b2 := h.capture(step.Captures[2]), h.capture(step.Captures[3])
			c.A2, c.B2 = &a2, &b2
		}
		res, err := h.svc.LearnEffect(ctx, ep, step.Effect, c)
		if err != nil {
			return out, err
		}
		learnOutcome(out, res)

	case DoApply:
		res, err := h.svc.Apply(ctx, ep, step.Enable)
		applyOutcome(out, res)
		return out, err

	case DoFXApply:
		res, err := h.svc.EffectApply(ctx, ep, step.Effect, step.Enable)
		applyOutcome(out, res)
		return out, err

	case DoRead:
		res, err := h.svc.ReadMain(ep, step.Fast)
		if err != nil {
			return out, err
		}
		stateOutcome(out, res)

	case DoFXRead:
		res, err := h.svc.ReadEffect(ep, step.Effect, step.Fast)
		if err != nil {
			return out, err
		}
		stateOutcome(out, res)

	case DoSupported:
		ok, err := h.svc.IsSupported(ep)
		if err != nil {
			return out, err
		}
		out["supported"] = ok

	case DoFXList:
		names, err := h.svc.ListEffects(ep)
		if err != nil {
			return out, err
		}
		out["effects"] = names

	case DoFXForget:
		sections, err := h.svc.ForgetEffect(ep, step.Effect)
		if err != nil {
			return out, err
		}
		out["sections"] = sections

	case DoDiscover:
		d := h.svc.Discover(ctx, ep, h.capture(step.Captures[0]), h.capture(step.Captures[1]))
		out["added"] = len(d.Diff.Added)
		out["removed"] = len(d.Diff.Removed)
		out["changed"] = len(d.Diff.Changed)
		out["flips"] = len(d.Diff.Flips)
	}
	h.logger.Debug("step executed", "do", step.Do, "device", ep.ID)
	return out, nil
}

func registryPath(ep endpoint.Endpoint, subkey string) string {
	key, _ := ep.Key()
	return endpoint.KeyPath(key, ep.Flow, subkey)
}

func learnOutcome(out map[string]any, res vendor.LearnResult) {
	out["section"] = res.Section
	out["deduplicated"] = res.Deduplicated
	out["multi_write"] = res.MultiWrite
	if res.MultiWrite {
		out["write_count"] = res.WriteCount
	} else {
		out["value_name"] = res.ValueName
	}
}

func applyOutcome(out map[string]any, res vendor.ApplyResult) {
	out["ok"] = res.OK
	out["state"] = res.State.String()
	if res.VerifiedBy != "" {
		out["verified_by"] = res.VerifiedBy
	}
}

func stateOutcome(out map[string]any, res vendor.StateResult) {
	out["state"] = res.State.String()
	out["section"] = res.Section
	if q := res.Quorum; q != nil {
		out["source"] = string(q.Source)
		out["votes_on"] = q.True
		out["votes_off"] = q.False
	}
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(step Step, out map[string]any, err error) []string {
	e := step.Expect
	if e == nil {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
		return nil
	}

	var msgs []string
	mismatch := func(field string, want, got any) {
		msgs = append(msgs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}
	switch {
	case e.Error != "" && err == nil:
		mismatch("error", e.Error, "none")
	case e.Error == "" && err != nil:
		msgs = append(msgs, fmt.Sprintf("unexpected error: %v", err))
	case e.Error != "" && errorCode(err) != e.Error:
		mismatch("error", e.Error, errorCode(err))
	}

	str := func(field, want string) {
		if want != "" && out[field] != want {
			mismatch(field, want, out[field])
		}
	}
	flag := func(field string, want *bool) {
		if want != nil && out[field] != *want {
			mismatch(field, *want, out[field])
		}
	}
	str("state", e.State)
	str("section", e.Section)
	str("verified_by", e.VerifiedBy)
	flag("deduplicated", e.Deduplicated)
	flag("multi_write", e.MultiWrite)
	flag("supported", e.Supported)
	if e.WriteCount != 0 && out["write_count"] != e.WriteCount {
		mismatch("write_count", e.WriteCount, out["write_count"])
	}
	if e.Effects != nil {
		got, _ := out["effects"].([]string)
		if fmt.Sprint(got) != fmt.Sprint(e.Effects) {
			mismatch("effects", e.Effects, got)
		}
	}
	return msgs
}
