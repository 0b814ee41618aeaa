// Package engine applies and reads learned rules against the registry.
//
// Simple rules write one DWORD to every configured hive and succeed when
// any hive accepts it. Compound rules write every item and succeed only
// when all writes do. Compound state is decided by quorum voting across
// items, falling back to the decider item and then to the best-scored
// item when the vote is inconclusive.
//
// Reads never fail: a value that is absent, unreadable or unrecognized
// reads as ir.Unknown.
//
// The engine is synchronous. Verifier polls a read function on an
// injected platform.Clock so tests never sleep.
package engine
