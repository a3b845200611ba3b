package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// emitFunc renders the JSX body of one element's component. Lines are
// relative to the component's return indentation.
type emitFunc func(c *compiler, e *ir.Element, a animated, path string, depth int) ([]string, error)

// emitters dispatches on element type. The table is fixed; an element type
// missing from it is a fatal compile error.
var emitters map[ir.ElementType]emitFunc

// The table is filled in init because emitSequence reaches it again through
// (*compiler).sequences.
func init() {
	emitters = map[ir.ElementType]emitFunc{
		ir.TypeVideo:    emitVideo,
		ir.TypeAudio:    emitAudio,
		ir.TypeImage:    emitImage,
		ir.TypeText:     emitText,
		ir.TypeShape:    emitShape,
		ir.TypeSequence: emitSequence,
	}
}

// componentPrefix names generated components; the block index is appended.
var componentPrefix = map[ir.ElementType]string{
	ir.TypeVideo:    "Video",
	ir.TypeAudio:    "Audio",
	ir.TypeImage:    "Image",
	ir.TypeText:     "Text",
	ir.TypeShape:    "Shape",
	ir.TypeSequence: "Group",
}

// props returns the element's properties as variant P, or an empty P when
// they are missing or belong to another type.
func props[P any, PT interface {
	*P
	ir.Properties
}](c *compiler, e *ir.Element) PT {
	if p, ok := e.Properties.(PT); ok {
		return p
	}
	if e.Properties != nil {
		c.warn(e, "%s properties ignored on a %s element", e.Properties.ElementType(), e.Type)
	}
	return PT(new(P))
}

func emitVideo(c *compiler, e *ir.Element, a animated, _ string, _ int) ([]string, error) {
	p := props[ir.VideoProps](c, e)
	c.use("OffthreadVideo")

	attrs := " src={" + literal(p.Src) + "}"
	attrs += mediaAttrs(c, e, a, p.Volume, p.PlaybackRate, p.StartFrom)

	var st style
	if p.Opacity != nil {
		st.set("opacity", c.num(e, *p.Opacity))
	}
	a.apply(&st)
	return []string{"<OffthreadVideo" + attrs + st.attr() + " />"}, nil
}

func emitAudio(c *compiler, e *ir.Element, a animated, _ string, _ int) ([]string, error) {
	p := props[ir.AudioProps](c, e)
	c.use("Audio")

	attrs := " src={" + literal(p.Src) + "}"
	attrs += mediaAttrs(c, e, a, p.Volume, p.PlaybackRate, p.StartFrom)

	if a.visual() {
		c.warn(e, "visual animations have no effect on audio")
	}
	return []string{"<Audio" + attrs + " />"}, nil
}

// mediaAttrs renders the playback attributes shared by video and audio.
// An animated volume replaces the static one.
func mediaAttrs(c *compiler, e *ir.Element, a animated, volume, rate *float64, startFrom *int64) string {
	var attrs string
	switch {
	case a.volume != "":
		attrs += " volume={" + a.volume + "}"
	case volume != nil:
		attrs += " volume={" + c.num(e, *volume) + "}"
	}
	if rate != nil {
		attrs += " playbackRate={" + c.num(e, *rate) + "}"
	}
	if startFrom != nil {
		attrs += fmt.Sprintf(" startFrom={%d}", *startFrom)
	}
	return attrs
}

func emitImage(c *compiler, e *ir.Element, a animated, _ string, _ int) ([]string, error) {
	p := props[ir.ImageProps](c, e)
	c.use("Img")

	var st style
	if p.Fit != "" {
		st.set("objectFit", literal(p.Fit))
	}
	if p.Opacity != nil {
		st.set("opacity", c.num(e, *p.Opacity))
	}
	a.apply(&st)
	return []string{"<Img src={" + literal(p.Src) + "}" + st.attr() + " />"}, nil
}

func emitText(c *compiler, e *ir.Element, a animated, _ string, _ int) ([]string, error) {
	p := props[ir.TextProps](c, e)

	var st style
	if p.Color != "" {
		st.set("color", literal(p.Color))
	}
	if p.FontSize != nil {
		st.set("fontSize", c.num(e, *p.FontSize))
	}
	if p.FontFamily != "" {
		st.set("fontFamily", literal(p.FontFamily))
	}
	if p.Opacity != nil {
		st.set("opacity", c.num(e, *p.Opacity))
	}
	a.apply(&st)

	var children []string
	if p.Text != "" {
		children = []string{"  {" + literal(p.Text) + "}"}
	}
	return element("div", st.attr(), children), nil
}

// shapeRadius maps shape names to a border radius. Rectangles need none.
var shapeRadius = map[string]string{
	"":          "",
	"rect":      "",
	"rectangle": "",
	"square":    "",
	"circle":    `"50%"`,
	"ellipse":   `"50%"`,
}

func emitShape(c *compiler, e *ir.Element, a animated, _ string, _ int) ([]string, error) {
	p := props[ir.ShapeProps](c, e)

	var st style
	st.set("width", sizeExpr(c, e, p.Width))
	st.set("height", sizeExpr(c, e, p.Height))
	if p.Color != "" {
		st.set("backgroundColor", literal(p.Color))
	}
	radius, ok := shapeRadius[p.Shape]
	if !ok {
		c.warn(e, "unknown shape %q, rendering a rectangle", p.Shape)
	}
	if radius != "" {
		st.set("borderRadius", radius)
	}
	if p.Opacity != nil {
		st.set("opacity", c.num(e, *p.Opacity))
	}
	a.apply(&st)
	return []string{"<div" + st.attr() + " />"}, nil
}

func sizeExpr(c *compiler, e *ir.Element, v *float64) string {
	if v == nil {
		return `"100%"`
	}
	return c.num(e, *v)
}

func emitSequence(c *compiler, e *ir.Element, a animated, path string, depth int) ([]string, error) {
	p := props[ir.SequenceProps](c, e)

	var st style
	if p.Opacity != nil {
		st.set("opacity", c.num(e, *p.Opacity))
	}
	a.apply(&st)

	children, err := c.sequences(e.Children, path+".children", depth+1, 1)
	if err != nil {
		return nil, err
	}
	return element("AbsoluteFill", st.attr(), children), nil
}

// element renders <tag attrs>children</tag> as lines, self-closing when
// there are no children.
func element(tag, attrs string, children []string) []string {
	if len(children) == 0 {
		return []string{"<" + tag + attrs + " />"}
	}
	lines := make([]string, 0, len(children)+2)
	lines = append(lines, "<"+tag+attrs+">")
	lines = append(lines, children...)
	lines = append(lines, "</"+tag+">")
	return lines
}

// apply merges animated style keys and the composed transform into st.
func (a animated) apply(st *style) {
	for _, k := range a.style.keys {
		st.set(k, a.style.exprs[k])
	}
	if len(a.transform) > 0 {
		st.set("transform", "`"+strings.Join(a.transform, " ")+"`")
	}
}
