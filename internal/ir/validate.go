package ir

import (
	"fmt"

	"go.uber.org/multierr"
)

// ValidateTiming checks the per-element timing bounds:
// from >= 0 (OutOfBounds) and durationInFrames > 0 (InvalidRange).
// from + durationInFrames may exceed the composition duration.
func ValidateTiming(path string, from, duration int64) error {
	var errs error
	if from < 0 {
		errs = multierr.Append(errs, fieldErr(joinPath(path, "from"), KindOutOfBounds,
			"from must be >= 0, got %d", from))
	}
	if duration <= 0 {
		errs = multierr.Append(errs, fieldErr(joinPath(path, "durationInFrames"), KindInvalidRange,
			"durationInFrames must be > 0, got %d", duration))
	}
	return errs
}

// ValidateAnimations checks that every animation names a property and has
// keyframes in strictly increasing frame order.
func ValidateAnimations(path string, anims []Animation) error {
	var errs error
	for i, a := range anims {
		p := joinPath(path, fmt.Sprintf("animations[%d]", i))
		if a.Property == "" {
			errs = multierr.Append(errs, fieldErr(joinPath(p, "property"), KindMalformed,
				"animated property name is required"))
		}
		if len(a.Keyframes) == 0 {
			errs = multierr.Append(errs, fieldErr(joinPath(p, "keyframes"), KindMalformed,
				"at least one keyframe is required"))
		}
		for j := 1; j < len(a.Keyframes); j++ {
			if a.Keyframes[j].Frame <= a.Keyframes[j-1].Frame {
				errs = multierr.Append(errs, fieldErr(joinPath(p, fmt.Sprintf("keyframes[%d].frame", j)),
					KindInvalidRange, "keyframe frames must strictly increase (%d after %d)",
					a.Keyframes[j].Frame, a.Keyframes[j-1].Frame))
			}
		}
		for j, kf := range a.Keyframes {
			if kf.Frame < 0 {
				errs = multierr.Append(errs, fieldErr(joinPath(p, fmt.Sprintf("keyframes[%d].frame", j)),
					KindOutOfBounds, "keyframe frame must be >= 0, got %d", kf.Frame))
			}
		}
	}
	return errs
}

// ValidateElement checks one element and its children. It does not check
// id uniqueness across the tree; see ValidateComposition.
func ValidateElement(path string, e *Element) error {
	var errs error
	if e.ID == "" {
		errs = multierr.Append(errs, fieldErr(joinPath(path, "id"), KindMalformed, "id is required"))
	}
	if _, ok := ParseElementType(string(e.Type)); !ok {
		errs = multierr.Append(errs, fieldErr(joinPath(path, "type"), KindMalformed,
			"unknown element type %q", e.Type))
	}
	errs = multierr.Append(errs, ValidateTiming(path, e.From, e.DurationInFrames))
	if e.Properties != nil && e.Properties.ElementType() != e.Type {
		errs = multierr.Append(errs, fieldErr(joinPath(path, "properties"), KindMalformed,
			"%s properties on a %s element", e.Properties.ElementType(), e.Type))
	}
	errs = multierr.Append(errs, ValidateProperties(joinPath(path, "properties"), e.Properties))
	errs = multierr.Append(errs, ValidateAnimations(path, e.Animations))
	if len(e.Children) > 0 && e.Type != TypeSequence {
		errs = multierr.Append(errs, fieldErr(joinPath(path, "children"), KindMalformed,
			"only sequence elements may have children, %s has %d", e.Type, len(e.Children)))
	}
	for i := range e.Children {
		errs = multierr.Append(errs, ValidateElement(joinPath(path, fmt.Sprintf("children[%d]", i)), &e.Children[i]))
	}
	return errs
}

// ValidateMetadata checks that every metadata dimension is positive.
func ValidateMetadata(m Metadata) error {
	var errs error
	check := func(name string, v int64) {
		if v <= 0 {
			errs = multierr.Append(errs, fieldErr("metadata."+name, KindOutOfBounds,
				"%s must be > 0, got %d", name, v))
		}
	}
	check("width", m.Width)
	check("height", m.Height)
	check("fps", m.FPS)
	check("durationInFrames", m.DurationInFrames)
	return errs
}

// ValidateComposition checks the whole document and returns every problem
// found, combined with multierr.
func ValidateComposition(c *Composition) error {
	var errs error
	if c.ID == "" {
		errs = multierr.Append(errs, fieldErr("id", KindMalformed, "composition id is required"))
	}
	if c.Version < 1 {
		errs = multierr.Append(errs, fieldErr("version", KindOutOfBounds,
			"version must be >= 1, got %d", c.Version))
	}
	errs = multierr.Append(errs, ValidateMetadata(c.Metadata))

	for i := range c.Elements {
		errs = multierr.Append(errs, ValidateElement(fmt.Sprintf("elements[%d]", i), &c.Elements[i]))
	}

	seen := make(map[string]bool)
	for _, id := range CollectIDs(c.Elements) {
		if id == "" {
			continue
		}
		if seen[id] {
			errs = multierr.Append(errs, fieldErr("elements", KindMalformed, "duplicate element id %q", id))
		}
		seen[id] = true
	}
	return errs
}
