// Package plan decodes edit plans and composition documents at the system
// boundary.
//
// Raw input is first checked against an embedded CUE schema (schema.cue)
// so that shape errors are reported with positions before any Go decoding
// happens. Plans that pass are decoded into ir.EditPlan and run through
// engine.ValidatePlan; every failure is an *engine.EditError of kind
// Malformed.
//
// Plans may be written as JSON or YAML. Compositions may additionally be
// written in CUE.
package plan
