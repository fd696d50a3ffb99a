// Package harness provides a scenario testing framework for the
// constraint engine.
//
// Scenarios are YAML files describing a shape collection, an ordered
// constraint script, and expectations over the settled geometry. The
// harness builds a fresh engine per scenario with deterministic
// constraint ids, applies the script, and checks the expectations.
//
// Golden snapshot comparison (RunWithGolden) captures the settled
// shapes and per-constraint satisfaction as canonical JSON and compares
// it against files under testdata/golden. Coordinates are rounded
// before snapshotting so convergence noise below the solver tolerance
// never churns golden files.
package harness
