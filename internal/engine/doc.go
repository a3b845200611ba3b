// Package engine implements the reel Edit Executor.
//
// The executor takes an edit plan (operation, selector, changes) and a
// composition and either applies the edit or rejects it with a typed
// *EditError. It never mutates the composition it is given: a successful
// Apply returns a new composition with the version bumped by one and a
// patch appended to its log.
//
// Checks run in three ordered layers:
//
//  1. Structure: known operation, selector present exactly when needed,
//     selector well formed (ValidatePlan). Failures are Malformed.
//  2. Resolution: the selector (or the caller's resolvedID) must name
//     exactly one element. Zero matches are NotFound with suggestions;
//     several matches yield StatusAmbiguous with candidates and no edit.
//  3. Execution: changes are parsed and the resulting element is checked
//     for bounds before anything is committed.
//
// An edit is all-or-nothing: a failure in any layer leaves the input
// composition byte-for-byte unchanged.
//
// Every patch records what undo needs (the full previous element, the
// position of a deleted element, the previous top-level order) and the
// concrete TargetID, so redo replays by id through Replay instead of
// re-running a selector whose meaning may have shifted.
//
// Ids come from an injected IDGenerator (UUIDv7 in production) and patch
// timestamps from an injected Clock. Timestamps are informational; patch
// order is the log order.
package engine
