package ir

import (
	"go.uber.org/multierr"
)

// Properties is the type-specific property set of an element.
//
// Each element type has its own strongly typed variant. Keys a variant does
// not know are kept verbatim in its Extra map so that documents written by a
// newer planner survive a round trip.
//
// On the wire every variant is a single flat JSON object.
type Properties interface {
	// ElementType reports which element type the variant belongs to.
	ElementType() ElementType

	// Object returns the flat wire view: typed keys plus Extra.
	Object() Object
}

// VideoProps holds properties of a video element.
type VideoProps struct {
	Src          string
	Volume       *float64
	Opacity      *float64
	PlaybackRate *float64
	StartFrom    *int64
	Extra        Object
}

// AudioProps holds properties of an audio element.
type AudioProps struct {
	Src          string
	Volume       *float64
	PlaybackRate *float64
	StartFrom    *int64
	Extra        Object
}

// ImageProps holds properties of an image element.
type ImageProps struct {
	Src     string
	Opacity *float64
	Fit     string
	Extra   Object
}

// TextProps holds properties of a text element.
type TextProps struct {
	Text       string
	Color      string
	FontSize   *float64
	FontFamily string
	Opacity    *float64
	Extra      Object
}

// ShapeProps holds properties of a shape element.
type ShapeProps struct {
	Shape   string
	Color   string
	Width   *float64
	Height  *float64
	Opacity *float64
	Extra   Object
}

// SequenceProps holds properties of a sequence (group) element.
type SequenceProps struct {
	Opacity *float64
	Extra   Object
}

func (*VideoProps) ElementType() ElementType    { return TypeVideo }
func (*AudioProps) ElementType() ElementType    { return TypeAudio }
func (*ImageProps) ElementType() ElementType    { return TypeImage }
func (*TextProps) ElementType() ElementType     { return TypeText }
func (*ShapeProps) ElementType() ElementType    { return TypeShape }
func (*SequenceProps) ElementType() ElementType { return TypeSequence }

func (p *VideoProps) Object() Object {
	enc := newPropEncoder(p.Extra)
	enc.str("src", p.Src)
	enc.num("volume", p.Volume)
	enc.num("opacity", p.Opacity)
	enc.num("playbackRate", p.PlaybackRate)
	enc.int("startFrom", p.StartFrom)
	return enc.obj
}

func (p *AudioProps) Object() Object {
	enc := newPropEncoder(p.Extra)
	enc.str("src", p.Src)
	enc.num("volume", p.Volume)
	enc.num("playbackRate", p.PlaybackRate)
	enc.int("startFrom", p.StartFrom)
	return enc.obj
}

func (p *ImageProps) Object() Object {
	enc := newPropEncoder(p.Extra)
	enc.str("src", p.Src)
	enc.num("opacity", p.Opacity)
	enc.str("fit", p.Fit)
	return enc.obj
}

func (p *TextProps) Object() Object {
	enc := newPropEncoder(p.Extra)
	enc.str("text", p.Text)
	enc.str("color", p.Color)
	enc.num("fontSize", p.FontSize)
	enc.str("fontFamily", p.FontFamily)
	enc.num("opacity", p.Opacity)
	return enc.obj
}

func (p *ShapeProps) Object() Object {
	enc := newPropEncoder(p.Extra)
	enc.str("shape", p.Shape)
	enc.str("color", p.Color)
	enc.num("width", p.Width)
	enc.num("height", p.Height)
	enc.num("opacity", p.Opacity)
	return enc.obj
}

func (p *SequenceProps) Object() Object {
	enc := newPropEncoder(p.Extra)
	enc.num("opacity", p.Opacity)
	return enc.obj
}

// DecodeProperties builds the typed variant for t from a flat object.
// A typed key holding the wrong JSON kind is a Malformed error; unknown
// keys are kept in Extra. Range checks are left to ValidateProperties.
func DecodeProperties(t ElementType, obj Object) (Properties, error) {
	dec := &propDecoder{obj: obj, used: map[string]bool{}}
	var p Properties
	switch t {
	case TypeVideo:
		p = &VideoProps{
			Src:          dec.str("src"),
			Volume:       dec.num("volume"),
			Opacity:      dec.num("opacity"),
			PlaybackRate: dec.num("playbackRate"),
			StartFrom:    dec.int("startFrom"),
			Extra:        dec.extra(),
		}
	case TypeAudio:
		p = &AudioProps{
			Src:          dec.str("src"),
			Volume:       dec.num("volume"),
			PlaybackRate: dec.num("playbackRate"),
			StartFrom:    dec.int("startFrom"),
			Extra:        dec.extra(),
		}
	case TypeImage:
		p = &ImageProps{
			Src:     dec.str("src"),
			Opacity: dec.num("opacity"),
			Fit:     dec.str("fit"),
			Extra:   dec.extra(),
		}
	case TypeText:
		p = &TextProps{
			Text:       dec.str("text"),
			Color:      dec.str("color"),
			FontSize:   dec.num("fontSize"),
			FontFamily: dec.str("fontFamily"),
			Opacity:    dec.num("opacity"),
			Extra:      dec.extra(),
		}
	case TypeShape:
		p = &ShapeProps{
			Shape:   dec.str("shape"),
			Color:   dec.str("color"),
			Width:   dec.num("width"),
			Height:  dec.num("height"),
			Opacity: dec.num("opacity"),
			Extra:   dec.extra(),
		}
	case TypeSequence:
		p = &SequenceProps{
			Opacity: dec.num("opacity"),
			Extra:   dec.extra(),
		}
	default:
		return nil, fieldErr("type", KindMalformed, "unknown element type %q", t)
	}
	if dec.err != nil {
		return nil, dec.err
	}
	return p, nil
}

// MergeProperties shallow-merges changes into p and returns a new variant.
// Keys absent from changes survive; a null value removes the key.
func MergeProperties(p Properties, changes Object) (Properties, error) {
	merged := p.Object()
	for k, v := range changes {
		if IsNull(v) {
			delete(merged, k)
			continue
		}
		merged[k] = CloneValue(v)
	}
	return DecodeProperties(p.ElementType(), merged)
}

// CloneProperties returns a deep copy of p.
func CloneProperties(p Properties) Properties {
	if p == nil {
		return nil
	}
	// Object() already deep-copies Extra; decoding it back cannot fail
	// because it was produced by a valid variant.
	out, err := DecodeProperties(p.ElementType(), p.Object())
	if err != nil {
		panic("ir: clone of valid properties failed: " + err.Error())
	}
	return out
}

// requiresSource lists the element types whose src must be present.
var requiresSource = map[ElementType]bool{
	TypeVideo: true,
	TypeAudio: true,
	TypeImage: true,
}

// ValidateProperties checks numeric ranges and required keys. The range
// rules apply to the flat view, so a volume stored as an extra attribute on
// a text element is still checked. All failures are returned together.
func ValidateProperties(path string, p Properties) error {
	if p == nil {
		return nil
	}
	obj := p.Object()
	var errs error

	if requiresSource[p.ElementType()] {
		if src, ok := AsString(obj["src"]); !ok || src == "" {
			errs = multierr.Append(errs, fieldErr(joinPath(path, "src"), KindMalformed,
				"src is required for %s elements", p.ElementType()))
		}
	}

	for _, key := range []string{"volume", "opacity"} {
		v, present := obj[key]
		if !present {
			continue
		}
		f, ok := AsFloat(v)
		if !ok {
			errs = multierr.Append(errs, fieldErr(joinPath(path, key), KindMalformed,
				"%s must be a number, got %s", key, KindOf(v)))
			continue
		}
		if f < 0 || f > 1 {
			errs = multierr.Append(errs, fieldErr(joinPath(path, key), KindOutOfBounds,
				"%s must be within [0, 1], got %v", key, f))
		}
	}

	if v, present := obj["playbackRate"]; present {
		f, ok := AsFloat(v)
		switch {
		case !ok:
			errs = multierr.Append(errs, fieldErr(joinPath(path, "playbackRate"), KindMalformed,
				"playbackRate must be a number, got %s", KindOf(v)))
		case f <= 0 || f > 10:
			errs = multierr.Append(errs, fieldErr(joinPath(path, "playbackRate"), KindOutOfBounds,
				"playbackRate must be within (0, 10], got %v", f))
		}
	}

	if v, present := obj["startFrom"]; present {
		if n, ok := AsInt(v); ok && n < 0 {
			errs = multierr.Append(errs, fieldErr(joinPath(path, "startFrom"), KindOutOfBounds,
				"startFrom must be >= 0, got %d", n))
		}
	}

	return errs
}

// propEncoder builds the flat view of a variant.
type propEncoder struct {
	obj Object
}

func newPropEncoder(extra Object) *propEncoder {
	obj := extra.Clone()
	if obj == nil {
		obj = Object{}
	}
	return &propEncoder{obj: obj}
}

func (e *propEncoder) str(key, v string) {
	if v != "" {
		e.obj[key] = String(v)
	}
}

func (e *propEncoder) num(key string, v *float64) {
	if v != nil {
		e.obj[key] = Float(*v)
	}
}

func (e *propEncoder) int(key string, v *int64) {
	if v != nil {
		e.obj[key] = Int(*v)
	}
}

// propDecoder pulls typed keys out of a flat object, remembering which
// keys it consumed and the first kind mismatch it saw.
type propDecoder struct {
	obj  Object
	used map[string]bool
	err  error
}

func (d *propDecoder) take(key string) (Value, bool) {
	v, ok := d.obj[key]
	if !ok || IsNull(v) {
		return nil, false
	}
	d.used[key] = true
	return v, true
}

func (d *propDecoder) fail(key string, want string, got Value) {
	d.err = multierr.Append(d.err, fieldErr(joinPath("properties", key), KindMalformed,
		"%s must be %s, got %s", key, want, KindOf(got)))
}

func (d *propDecoder) str(key string) string {
	v, ok := d.take(key)
	if !ok {
		return ""
	}
	s, ok := AsString(v)
	if !ok {
		d.fail(key, "a string", v)
	}
	return s
}

func (d *propDecoder) num(key string) *float64 {
	v, ok := d.take(key)
	if !ok {
		return nil
	}
	f, ok := AsFloat(v)
	if !ok {
		d.fail(key, "a number", v)
		return nil
	}
	return &f
}

func (d *propDecoder) int(key string) *int64 {
	v, ok := d.take(key)
	if !ok {
		return nil
	}
	n, ok := AsInt(v)
	if !ok {
		d.fail(key, "an integer", v)
		return nil
	}
	return &n
}

func (d *propDecoder) extra() Object {
	var extra Object
	for k, v := range d.obj {
		if d.used[k] || IsNull(v) {
			continue
		}
		if extra == nil {
			extra = Object{}
		}
		extra[k] = CloneValue(v)
	}
	return extra
}
