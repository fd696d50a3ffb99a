// Package engine orchestrates constraint resolution for the editor.
//
// The engine owns an ordered list of constraints between shape anchors.
// Adding a constraint formulates its residual equations, solves them
// immediately, writes the result back onto shape positions, and stores
// the constraint for later re-enforcement.
//
// ARCHITECTURE:
//
// Pairwise, declaration-order resolution:
// Constraints are NOT solved as one globally coupled system.
// ApplyAllConstraints walks the stored list and resolves each constraint
// independently, in order. A shape touched by several constraints is
// moved once per constraint, so later constraints can override earlier
// ones on shared shapes. This is an intentional simplification of the
// design, not an omission — the editor's interaction model depends on
// these order-dependent semantics.
//
// Anchors are derived state:
// The anchor catalog is rebuilt from shape parameters before every
// solve and never persisted. Offsets are unrotated; rotation enters
// only when an anchor resolves to world space.
//
// Write-back translates, never rotates:
// Applying a solved anchor coordinate translates the owning shape's
// position by (solvedWorld - currentWorld). Rotation and scale are
// never mutated by the engine.
//
// Re-entrancy:
// Applying a result mutates shape transforms, which the editing
// collaborator may report back via ShapesMutated. An internal applying
// flag makes that call a no-op mid-solve, cutting the feedback loop.
// All solving is single-threaded and runs to completion.
package engine
