package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// easings maps easing names to Remotion easing expressions.
var easings = map[string]string{
	"linear":      "Easing.linear",
	"ease":        "Easing.ease",
	"ease-in":     "Easing.in(Easing.ease)",
	"ease-out":    "Easing.out(Easing.ease)",
	"ease-in-out": "Easing.inOut(Easing.ease)",
}

// transformOrder fixes the order transform functions are composed in,
// independent of the order animations are listed.
var transformOrder = []string{"x", "y", "scale", "rotate"}

var transformFuncs = map[string]string{
	"x":      "translateX(${%s}px)",
	"y":      "translateY(${%s}px)",
	"scale":  "scale(${%s})",
	"rotate": "rotate(${%s}deg)",
}

// animated is the compiled form of an element's animations: one constant
// declaration per property and the expressions that consume them.
type animated struct {
	decls     []string
	style     style
	transform []string
	volume    string
	usesFrame bool
}

// visual reports whether any animation targets style or transform.
func (a animated) visual() bool {
	return len(a.style.keys) > 0 || len(a.transform) > 0
}

// animations compiles e's animations. Transform properties (x, y, scale,
// rotate) are joined into a single transform; volume drives the media
// volume attribute; anything else sets the style key of the same name.
func (c *compiler) animations(e *ir.Element) (animated, error) {
	var a animated
	seen := map[string]bool{}
	transforms := map[string]string{}

	for _, anim := range e.Animations {
		prop := anim.Property
		switch {
		case !identRe.MatchString(prop):
			c.warn(e, "animated property %q is not a valid identifier, skipped", prop)
			continue
		case seen[prop]:
			c.warn(e, "property %s is animated more than once, later animation skipped", prop)
			continue
		case len(anim.Keyframes) == 0:
			c.warn(e, "animation of %s has no keyframes, skipped", prop)
			continue
		case prop == "transform":
			c.warn(e, "transform cannot be animated directly, animate x, y, scale or rotate instead; skipped")
			continue
		case prop == "volume" && e.Type != ir.TypeVideo && e.Type != ir.TypeAudio:
			c.warn(e, "volume animation has no effect on %s elements, skipped", e.Type)
			continue
		}
		seen[prop] = true

		easing, err := c.easing(e, anim)
		if err != nil {
			return a, err
		}
		v := prop + "Value"
		if len(anim.Keyframes) > 1 {
			a.usesFrame = true
		}
		a.decls = append(a.decls, c.interpolation(e, v, anim, easing))

		switch {
		case transformFuncs[prop] != "":
			transforms[prop] = v
		case prop == "volume":
			a.volume = v
		default:
			a.style.set(prop, v)
		}
	}

	for _, prop := range transformOrder {
		if v, ok := transforms[prop]; ok {
			a.transform = append(a.transform, fmt.Sprintf(transformFuncs[prop], v))
		}
	}
	return a, nil
}

// easing resolves the easing expression for anim. An empty name means no
// easing. An unknown name is fatal under WithStrictEasing and otherwise
// degrades to no easing with a warning.
func (c *compiler) easing(e *ir.Element, anim ir.Animation) (string, error) {
	if anim.Easing == "" {
		return "", nil
	}
	expr, ok := easings[anim.Easing]
	if ok {
		c.use("Easing")
		return expr, nil
	}
	if c.strictEasing {
		return "", &CompileError{
			Field:     "animations",
			ElementID: e.ID,
			Message:   fmt.Sprintf("unknown easing %q for %s", anim.Easing, anim.Property),
		}
	}
	c.warn(e, "unknown easing %q for %s, using linear", anim.Easing, anim.Property)
	return "", nil
}

// interpolation renders the constant declaration for one animation. A
// single keyframe is a constant; more become an interpolate call clamped at
// both ends.
func (c *compiler) interpolation(e *ir.Element, name string, anim ir.Animation, easing string) string {
	if len(anim.Keyframes) == 1 {
		return fmt.Sprintf("const %s = %s;", name, c.num(e, anim.Keyframes[0].Value))
	}
	c.use("interpolate")

	frames := make([]string, len(anim.Keyframes))
	values := make([]string, len(anim.Keyframes))
	for i, kf := range anim.Keyframes {
		frames[i] = fmt.Sprintf("%d", kf.Frame)
		values[i] = c.num(e, kf.Value)
	}

	opts := `extrapolateLeft: "clamp", extrapolateRight: "clamp"`
	if easing != "" {
		opts = "easing: " + easing + ", " + opts
	}
	return fmt.Sprintf("const %s = interpolate(frame, [%s], [%s], {%s});",
		name, strings.Join(frames, ", "), strings.Join(values, ", "), opts)
}
