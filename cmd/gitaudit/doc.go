// Package gitaudit provides the command-line interface for the gitaudit tool.
// It configures subcommands (scan, rules, config, baseline), layers flags,
// environment and the repository config file, and executes the selected
// command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/gitaudit/cmd/gitaudit"
//	func main() { gitaudit.Execute() }
package gitaudit
