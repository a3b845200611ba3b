// Package history implements undo and redo over a composition's patch log.
//
// Undo is driven by the log itself: the last patch is popped and its
// inverse applied (Revert). Redo needs the patches undo removed, which live
// only in a Session's in-memory redo stack; a fresh edit clears it.
//
// Undo and redo are mutations like any other: each bumps the composition
// version by one.
package history
