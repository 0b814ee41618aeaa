// Package store keeps a SQLite log of learning sessions.
//
// Every learn run gets a session row keyed by a UUIDv7, the labeled
// snapshots it captured, and the outcome with the catalog section it
// produced. A session can be re-examined later: its snapshots are stored
// record by record, so the diff can be recomputed exactly.
//
//   - sessions: kind, endpoint, flow, effect name, timestamps, outcome
//   - snapshots: label, capture time, live reads as JSON
//   - records: one row per persisted property value
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Timestamps are stored as RFC 3339 text in UTC.
package store
