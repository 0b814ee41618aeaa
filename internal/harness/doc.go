// Package harness runs end-to-end scenarios against a simulated machine.
//
// A scenario declares a registry fixture, a flow of steps that edit the
// registry, take snapshots and call the vendor service, and assertions on
// the final catalog and registry. Runs use an in-memory registry and a
// fake clock, so traces are identical across runs and can be compared
// with golden files.
//
// # Scenario Format
//
//	name: main_learn_apply
//	description: "Learn the main switch, then toggle it"
//	registry:
//	  endpoints:
//	    - id: "{0.0.0.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}"
//	      flow: playback
//	      name: Speakers
//	  keys:
//	    - hive: HKCU
//	      device: "{0.0.0.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}"
//	      flow: playback
//	      subkey: FxProperties
//	flow:
//	  - do: set
//	    subkey: FxProperties
//	    name: "{b3f8fa53-0004-438e-9003-51a46e139bfc},3"
//	    type: REG_DWORD
//	    data: "0"
//	  - do: capture
//	    label: A
//	  - do: learn
//	    captures: [A, B]
//	    expect:
//	      deduplicated: false
//	assertions:
//	  - type: catalog_sections
//	    mains: 1
//
// # Steps
//
//   - set, delete, deny_writes: edit the simulated registry
//   - capture: take a snapshot and store it under label
//   - learn, learn_fx, discover: consume stored snapshots
//   - apply, fx_apply, read, fx_read: toggle and read learned rules
//   - supported, fx_list, fx_forget: catalog membership queries
//
// A step without expect must succeed. expect.error names the error code a
// step must fail with.
//
// # Assertion Types
//
//   - catalog_sections: counts of main, effect and skipped sections
//   - catalog_contains: substring of the re-rendered catalog
//   - registry_value: a value in the final registry
//   - writes: number of successful registry writes during the flow
package harness
