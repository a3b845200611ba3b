// Package compiler turns a composition into a render description.
//
// The output is a Remotion-style TSX module: one <Sequence> per element,
// tagged with the element's stable id, and one small React component per
// element emitted by a per-type emitter. Animations compile to clamped
// interpolate calls.
//
// Compilation is a pure function of the composition: identical input gives
// byte-identical Source. Metadata problems and unknown element types are
// fatal; everything else (unknown easing, shape or animated property) is
// reported in Program.Warnings.
package compiler
