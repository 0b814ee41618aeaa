// Package rule defines learned enhancement rules and derives them from
// snapshot diffs.
//
// A rule maps a logical enable/disable intent onto concrete registry
// writes. MainRule drives the primary enhancements switch through one
// DWORD. EffectRule drives a named secondary effect, either through one
// DWORD (legacy) or a compound list of WriteItems read back by quorum.
//
// Rules are identified by a digest of their normalized content, never by
// their display name, so identical rules learned on different machines
// share one catalog section.
package rule
