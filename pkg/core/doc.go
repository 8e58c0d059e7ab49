// Package core provides a small, stable facade over gitaudit's internal
// engine for external integrations. It re-exports a narrow API surface so
// that other tools can depend on a stable import path without importing
// internal packages.
//
// Example:
//
//	a := core.NewFromOptions(map[string]any{
//		"repository_path": ".",
//		"scan_history":    true,
//		"max_commits":     20,
//	})
//	if a.ShouldRun() && !a.Run(ctx) {
//		_ = core.WriteReport(os.Stdout, core.NewReport(a, a.Findings()))
//	}
package core
