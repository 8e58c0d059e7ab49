// Package config normalizes gitaudit configuration. Options arrive as a loosely
// typed map (from a YAML file, environment variables or CLI flags) and are
// converted once by Parse into a strongly typed Settings value; the engine never
// looks at raw option values.
package config
