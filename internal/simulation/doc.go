// Package simulation projects a country's emissions and electricity mix
// forward in time under a selection of clean technologies.
//
// A Path is built from an immutable historical series and a catalog
// Selection. Simulate starts from the latest historical year and steps one
// year at a time through EndingYear, or until total emissions fall below
// the zero floor. Each year runs a fixed pipeline:
//
//  1. baseline growth of every subsector along its fitted log curve
//  2. fossil and non-generating technologies, in selection order
//  3. carbon-free generation technologies, in selection order
//  4. totals recompute and row append
//
// Technologies are never mutated; their per-run deployment history lives in
// the Path's run state, so Simulate can be called repeatedly with identical
// results.
//
// Usage:
//
//	sel, err := catalog.Adapt(records, series.Subsectors())
//	path, err := simulation.NewPath(series, sel, simulation.DefaultParams())
//	result := path.Simulate()
//	summary := result.Summary()
package simulation
