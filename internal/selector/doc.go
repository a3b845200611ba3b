// Package selector resolves declarative element references against a
// composition's element tree.
//
// Resolution is a pure function of (selector, elements): no hidden state,
// no randomness, no I/O. Resolving the same selector against unchanged
// elements always yields the same ordered result set, which is what makes
// "the second clip" target the same element across repeated invocations.
//
// Traversal order is depth-first pre-order (a parent before its children),
// matching ir.Walk. Only by-index ignores children: it indexes the
// top-level slice.
package selector
