// Package catalog reads and maintains the rule catalog: a line-oriented
// INI file holding one section per learned rule.
//
// Parsing is permissive. A malformed section is skipped and reported in
// Catalog.Skipped so one bad entry never hides the rest. Edits rewrite
// only the lines they touch; every other byte of the file is preserved.
//
// The file is not locked. Two processes learning at the same time can
// interleave their appends.
package catalog
