// Package config loads the optional audioctl configuration file.
//
// The file is YAML. Before it is decoded it is checked against an
// embedded CUE schema, which rejects unknown fields, bad enum values and
// out-of-range numbers with a position-free path such as
// "verify.consecutive". Durations use time.ParseDuration syntax.
//
// Lookup order:
//
//  1. the --config flag
//  2. $AUDIOCTL_CONFIG
//  3. <user config dir>/audioctl/config.yaml
//
// An explicitly named file must exist. The per-user file is optional and
// its absence means defaults.
//
// Two environment variables override the file: AUDIOCTL_DEBUG=1 forces
// debug logging and AUDIOCTL_LEARN_CONFIRMED=1 skips the learn
// confirmation prompt.
package config
