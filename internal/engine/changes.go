package engine

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/roach88/reel/internal/ir"
)

// Keys each operation accepts in its changes object.
var allowedChanges = map[ir.Operation][]string{
	ir.OpAdd:     {"type", "label", "from", "durationInFrames", "properties", "animations", "children"},
	ir.OpUpdate:  {"label", "from", "durationInFrames", "properties", "animations"},
	ir.OpMove:    {"from", "durationInFrames"},
	ir.OpDelete:  {},
	ir.OpReorder: {"order"},
}

// updateChanges is the parsed form of an update's changes. Nil pointers mean
// "leave unchanged".
type updateChanges struct {
	Label         *string
	From          *int64
	Duration      *int64
	Properties    ir.Object
	Animations    []ir.Animation
	HasAnimations bool
}

// moveChanges is the parsed form of a move's changes.
type moveChanges struct {
	From     *int64
	Duration *int64
}

func malformed(path, format string, args ...any) error {
	return &ir.FieldError{Path: path, Kind: ir.KindMalformed, Message: fmt.Sprintf(format, args...)}
}

func childPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// checkKeys rejects keys the operation does not accept. Keys are visited in
// canonical order so the reported error is stable.
func checkKeys(op ir.Operation, path string, changes ir.Object, allowed []string) error {
	var errs error
	for _, k := range changes.SortedKeys() {
		if slices.Contains(allowed, k) {
			continue
		}
		switch {
		case k == "id":
			errs = multierr.Append(errs, malformed(childPath(path, k),
				"element ids are assigned by the engine and never change"))
		case k == "type" && op == ir.OpUpdate:
			errs = multierr.Append(errs, malformed(childPath(path, k),
				"element type cannot be changed; delete the element and add a new one"))
		case len(allowed) == 0:
			errs = multierr.Append(errs, malformed(childPath(path, k),
				"%s takes no changes", op))
		default:
			errs = multierr.Append(errs, malformed(childPath(path, k),
				"unknown field %q for %s (allowed: %v)", k, op, allowed))
		}
	}
	return errs
}

// frameField reads an integer frame value. Integral floats such as 30.0
// are accepted; 30.5 is not.
func frameField(path string, obj ir.Object, key string) (*int64, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	n, ok := ir.AsInt(v)
	if !ok {
		return nil, malformed(childPath(path, key), "%s must be an integer frame count, got %s", key, describeValue(v))
	}
	return &n, nil
}

func describeValue(v ir.Value) string {
	if f, ok := v.(ir.Float); ok {
		return fmt.Sprintf("%v", float64(f))
	}
	return ir.KindOf(v)
}

func stringField(path string, obj ir.Object, key string) (*string, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	s, ok := ir.AsString(v)
	if !ok {
		return nil, malformed(childPath(path, key), "%s must be a string, got %s", key, ir.KindOf(v))
	}
	return &s, nil
}

func objectField(path string, obj ir.Object, key string) (ir.Object, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	o, ok := v.(ir.Object)
	if !ok {
		return nil, malformed(childPath(path, key), "%s must be an object, got %s", key, ir.KindOf(v))
	}
	return o, nil
}

// parseAddChanges builds a new element (without ids) from add changes.
// Children are parsed recursively with the same rules.
func parseAddChanges(path string, changes ir.Object) (ir.Element, error) {
	el := ir.Element{DurationInFrames: DefaultDurationInFrames}
	errs := checkKeys(ir.OpAdd, path, changes, allowedChanges[ir.OpAdd])

	typeVal, ok := changes["type"]
	if !ok {
		return el, multierr.Append(errs, malformed(childPath(path, "type"),
			"type is required for add (one of %v)", ir.ElementTypes))
	}
	typeName, ok := ir.AsString(typeVal)
	if !ok {
		return el, multierr.Append(errs, malformed(childPath(path, "type"),
			"type must be a string, got %s", ir.KindOf(typeVal)))
	}
	t, ok := ir.ParseElementType(typeName)
	if !ok {
		return el, multierr.Append(errs, malformed(childPath(path, "type"),
			"unknown element type %q (one of %v)", typeName, ir.ElementTypes))
	}
	el.Type = t

	if label, err := stringField(path, changes, "label"); err != nil {
		errs = multierr.Append(errs, err)
	} else if label != nil {
		el.Label = *label
	}
	if from, err := frameField(path, changes, "from"); err != nil {
		errs = multierr.Append(errs, err)
	} else if from != nil {
		el.From = *from
	}
	if dur, err := frameField(path, changes, "durationInFrames"); err != nil {
		errs = multierr.Append(errs, err)
	} else if dur != nil {
		el.DurationInFrames = *dur
	}

	props, err := objectField(path, changes, "properties")
	errs = multierr.Append(errs, err)
	if err == nil {
		decoded, err := ir.DecodeProperties(t, props)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			el.Properties = decoded
		}
	}

	if v, ok := changes["animations"]; ok {
		anims, err := parseAnimations(childPath(path, "animations"), v)
		errs = multierr.Append(errs, err)
		el.Animations = anims
	}

	if v, ok := changes["children"]; ok {
		arr, ok := v.(ir.Array)
		if !ok {
			errs = multierr.Append(errs, malformed(childPath(path, "children"),
				"children must be an array, got %s", ir.KindOf(v)))
		}
		for i, item := range arr {
			p := fmt.Sprintf("%s[%d]", childPath(path, "children"), i)
			obj, ok := item.(ir.Object)
			if !ok {
				errs = multierr.Append(errs, malformed(p, "child must be an object, got %s", ir.KindOf(item)))
				continue
			}
			child, err := parseAddChanges(p, obj)
			errs = multierr.Append(errs, err)
			el.Children = append(el.Children, child)
		}
	}
	return el, errs
}

// parseUpdateChanges parses the changes of an update. A null label clears
// the label; a null animations list removes every animation.
func parseUpdateChanges(changes ir.Object) (updateChanges, error) {
	var uc updateChanges
	errs := checkKeys(ir.OpUpdate, "changes", changes, allowedChanges[ir.OpUpdate])
	if len(changes) == 0 {
		return uc, malformed("changes", "update requires at least one change")
	}

	if v, ok := changes["label"]; ok {
		if ir.IsNull(v) {
			empty := ""
			uc.Label = &empty
		} else if label, err := stringField("changes", changes, "label"); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			uc.Label = label
		}
	}

	var err error
	uc.From, err = frameField("changes", changes, "from")
	errs = multierr.Append(errs, err)
	uc.Duration, err = frameField("changes", changes, "durationInFrames")
	errs = multierr.Append(errs, err)

	uc.Properties, err = objectField("changes", changes, "properties")
	errs = multierr.Append(errs, err)

	if v, ok := changes["animations"]; ok {
		uc.HasAnimations = true
		if !ir.IsNull(v) {
			uc.Animations, err = parseAnimations("changes.animations", v)
			errs = multierr.Append(errs, err)
		}
	}
	return uc, errs
}

// parseMoveChanges parses the changes of a move: from and/or
// durationInFrames, nothing else.
func parseMoveChanges(changes ir.Object) (moveChanges, error) {
	var mc moveChanges
	errs := checkKeys(ir.OpMove, "changes", changes, allowedChanges[ir.OpMove])
	var err error
	mc.From, err = frameField("changes", changes, "from")
	errs = multierr.Append(errs, err)
	mc.Duration, err = frameField("changes", changes, "durationInFrames")
	errs = multierr.Append(errs, err)
	if errs == nil && mc.From == nil && mc.Duration == nil {
		return mc, malformed("changes", "move requires from or durationInFrames")
	}
	return mc, errs
}

// parseReorderChanges extracts changes.order as a list of ids.
func parseReorderChanges(changes ir.Object) ([]string, error) {
	if err := checkKeys(ir.OpReorder, "changes", changes, allowedChanges[ir.OpReorder]); err != nil {
		return nil, err
	}
	v, ok := changes["order"]
	if !ok {
		return nil, malformed("changes.order", "reorder requires order, the full list of top-level element ids")
	}
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, malformed("changes.order", "order must be an array of ids, got %s", ir.KindOf(v))
	}
	order := make([]string, len(arr))
	for i, item := range arr {
		s, ok := ir.AsString(item)
		if !ok {
			return nil, malformed(fmt.Sprintf("changes.order[%d]", i), "id must be a string, got %s", ir.KindOf(item))
		}
		order[i] = s
	}
	return order, nil
}

// parseAnimations reads an animation list. Keyframes may be written as
// {"frame": f, "value": v} objects or as [f, v] pairs.
func parseAnimations(path string, v ir.Value) ([]ir.Animation, error) {
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, malformed(path, "animations must be an array, got %s", ir.KindOf(v))
	}
	var errs error
	anims := make([]ir.Animation, 0, len(arr))
	for i, item := range arr {
		p := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(ir.Object)
		if !ok {
			errs = multierr.Append(errs, malformed(p, "animation must be an object, got %s", ir.KindOf(item)))
			continue
		}
		for _, k := range obj.SortedKeys() {
			if k != "property" && k != "keyframes" && k != "easing" {
				errs = multierr.Append(errs, malformed(childPath(p, k), "unknown animation field %q", k))
			}
		}

		var anim ir.Animation
		if prop, err := stringField(p, obj, "property"); err != nil {
			errs = multierr.Append(errs, err)
		} else if prop != nil {
			anim.Property = *prop
		}
		if easing, err := stringField(p, obj, "easing"); err != nil {
			errs = multierr.Append(errs, err)
		} else if easing != nil {
			anim.Easing = *easing
		}

		kfs, ok := obj["keyframes"].(ir.Array)
		if !ok && obj.Has("keyframes") {
			errs = multierr.Append(errs, malformed(childPath(p, "keyframes"),
				"keyframes must be an array, got %s", ir.KindOf(obj["keyframes"])))
		}
		for j, kv := range kfs {
			kf, err := parseKeyframe(fmt.Sprintf("%s[%d]", childPath(p, "keyframes"), j), kv)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			anim.Keyframes = append(anim.Keyframes, kf)
		}
		anims = append(anims, anim)
	}
	return anims, errs
}

func parseKeyframe(path string, v ir.Value) (ir.Keyframe, error) {
	var frameVal, valueVal ir.Value
	switch kv := v.(type) {
	case ir.Object:
		frameVal, valueVal = kv["frame"], kv["value"]
	case ir.Array:
		if len(kv) != 2 {
			return ir.Keyframe{}, malformed(path, "keyframe pair must be [frame, value], got %d items", len(kv))
		}
		frameVal, valueVal = kv[0], kv[1]
	default:
		return ir.Keyframe{}, malformed(path, "keyframe must be an object or [frame, value] pair, got %s", ir.KindOf(v))
	}
	frame, ok := ir.AsInt(frameVal)
	if !ok {
		return ir.Keyframe{}, malformed(childPath(path, "frame"), "frame must be an integer, got %s", describeValue(frameVal))
	}
	value, ok := ir.AsFloat(valueVal)
	if !ok {
		return ir.Keyframe{}, malformed(childPath(path, "value"), "value must be a number, got %s", describeValue(valueVal))
	}
	return ir.Keyframe{Frame: frame, Value: value}, nil
}
