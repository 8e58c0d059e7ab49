// Package engine runs the git security audit. An Audit enumerates the
// working tree, the staged index and recent commits through git plumbing,
// gates live files by size and binary content, matches the rule library
// and sweeps tracked files for sensitive names and large sizes. External
// consumers should use the facade in pkg/core.
package engine
