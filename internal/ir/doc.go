// Package ir provides the foundational value types for audioctl.
//
// All other internal packages import ir; ir imports nothing internal.
// It holds the small enums that address persisted endpoint state
// (Flow, Scope, PathRoot), the registry value model, the tri-state
// read result and the canonical encoding used for content-addressed
// rule identity.
//
// Key design constraints:
//   - No float types in canonical encodings; thresholds are fixed-point strings
//   - Registry value names compare case-insensitively
//   - State is never a bare bool when "could not determine" is possible
package ir
