// Package ir defines the composition document: the intermediate
// representation every other reel package reads and writes.
//
// This package holds types, canonical serialization and document-level
// validation only. All other internal packages import ir; ir imports
// nothing internal.
//
// Key design constraints:
//   - Element ids are assigned once and never change or get reused
//   - Element order in a slice is the document (and z-) order
//   - Properties are a typed variant per element type, with an Extra map
//     for keys the variant does not know
//   - Digests are computed over RFC 8785 canonical JSON only
//   - Wire field names follow the render engine's camelCase vocabulary
//     (durationInFrames, playbackRate), not Go naming
package ir
