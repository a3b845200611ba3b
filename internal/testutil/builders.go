package testutil

import "github.com/roach88/reel/internal/ir"

// DefaultMetadata is a 1080p, 30 fps, ten second canvas.
var DefaultMetadata = ir.Metadata{Width: 1920, Height: 1080, FPS: 30, DurationInFrames: 300}

// NewComposition returns a version 1 composition with the given top-level
// elements and DefaultMetadata.
func NewComposition(id string, elems ...ir.Element) *ir.Composition {
	c := ir.NewComposition(id, DefaultMetadata)
	c.Elements = append(c.Elements, elems...)
	return c
}

// Video builds a video element.
func Video(id, label, src string, from, dur int64) ir.Element {
	return ir.Element{ID: id, Type: ir.TypeVideo, Label: label, From: from, DurationInFrames: dur,
		Properties: &ir.VideoProps{Src: src}}
}

// Audio builds an audio element with the given volume.
func Audio(id, label, src string, volume float64, from, dur int64) ir.Element {
	return ir.Element{ID: id, Type: ir.TypeAudio, Label: label, From: from, DurationInFrames: dur,
		Properties: &ir.AudioProps{Src: src, Volume: &volume}}
}

// Text builds a text element.
func Text(id, label, text string, from, dur int64) ir.Element {
	return ir.Element{ID: id, Type: ir.TypeText, Label: label, From: from, DurationInFrames: dur,
		Properties: &ir.TextProps{Text: text}}
}

// Image builds an image element.
func Image(id, label, src string, from, dur int64) ir.Element {
	return ir.Element{ID: id, Type: ir.TypeImage, Label: label, From: from, DurationInFrames: dur,
		Properties: &ir.ImageProps{Src: src}}
}

// Shape builds a shape element.
func Shape(id, label, shape, color string, from, dur int64) ir.Element {
	return ir.Element{ID: id, Type: ir.TypeShape, Label: label, From: from, DurationInFrames: dur,
		Properties: &ir.ShapeProps{Shape: shape, Color: color}}
}

// Sequence builds a sequence element holding children.
func Sequence(id, label string, from, dur int64, children ...ir.Element) ir.Element {
	return ir.Element{ID: id, Type: ir.TypeSequence, Label: label, From: from, DurationInFrames: dur,
		Properties: &ir.SequenceProps{}, Children: children}
}

// Float returns a pointer to f, for optional numeric properties.
func Float(f float64) *float64 {
	return &f
}
