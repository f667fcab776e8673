// Package harness runs versioning scenarios.
//
// A scenario declares domain types in CUE, an optional old model and a new
// model as YAML fixtures, and assertions on what committing the new model
// over the old one must produce. Each scenario runs against a fresh
// in-memory document store with deterministic set identities, so the
// rendered report is stable enough for golden file comparison.
//
// Execution flow:
//  1. Compile the declarations into a registry
//  2. Commit the old model (if any) and reload it from the store
//  3. Commit the new model over the reloaded state
//  4. Optionally merge fresh conversions of both models
//  5. Evaluate assertions and render the report
package harness
