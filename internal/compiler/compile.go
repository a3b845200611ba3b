package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// Program is the render description of a composition: a Remotion-style TSX
// module plus a per-element index into it.
//
// Compile is deterministic: the same composition always yields
// byte-identical Source, and therefore the same Digest.
type Program struct {
	// Source is the generated TSX module.
	Source string `json:"source"`

	// Blocks lists one entry per element in document order (pre-order).
	Blocks []Block `json:"blocks"`

	// Warnings lists non-fatal problems, such as an unknown easing.
	Warnings []string `json:"warnings,omitempty"`

	// Digest is the domain-separated SHA-256 of Source.
	Digest string `json:"digest"`
}

// Block ties an element to the component that renders it.
type Block struct {
	ElementID        string         `json:"elementId"`
	Type             ir.ElementType `json:"type"`
	From             int64          `json:"from"`
	DurationInFrames int64          `json:"durationInFrames"`
	Depth            int            `json:"depth"`
	Component        string         `json:"component"`
}

// CompileError is a fatal compilation error.
type CompileError struct {
	// Field locates the problem, e.g. "metadata.fps" or "elements[2].type".
	Field string

	// ElementID is the offending element, if any.
	ElementID string

	Message string
}

func (e *CompileError) Error() string {
	if e.ElementID != "" {
		return fmt.Sprintf("%s: element %s: %s", e.Field, e.ElementID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Option configures Compile.
type Option func(*compiler)

// WithStrictEasing makes an unknown easing name a fatal *CompileError.
// By default it degrades to linear interpolation with a warning.
func WithStrictEasing() Option {
	return func(c *compiler) {
		c.strictEasing = true
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *compiler) {
		c.logger = l
	}
}

// Compile translates comp into a Program. It does not modify comp.
//
// Fatal errors: non-positive metadata dimensions and unknown element types.
// Anything else that cannot be rendered faithfully becomes a warning.
func Compile(comp *ir.Composition, opts ...Option) (*Program, error) {
	c := &compiler{
		logger:  slog.Default(),
		imports: map[string]bool{"AbsoluteFill": true},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := ir.ValidateMetadata(comp.Metadata); err != nil {
		var fe *ir.FieldError
		if errors.As(err, &fe) {
			return nil, &CompileError{Field: fe.Path, Message: fe.Message}
		}
		return nil, &CompileError{Field: "metadata", Message: err.Error()}
	}

	main, err := c.sequences(comp.Elements, "elements", 0, 3)
	if err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}

	var w writer
	w.line("// Code generated by reel %s. DO NOT EDIT.", ir.EngineVersion)
	w.line("// Composition %s, version %d.", comp.ID, comp.Version)
	w.blank()
	w.line(`import React from "react";`)
	w.line(`import {%s} from "remotion";`, strings.Join(c.importList(), ", "))
	w.blank()
	w.line("export const compositionConfig = {")
	w.line("  id: %s,", literal(comp.ID))
	w.line("  width: %d,", comp.Metadata.Width)
	w.line("  height: %d,", comp.Metadata.Height)
	w.line("  fps: %d,", comp.Metadata.FPS)
	w.line("  durationInFrames: %d,", comp.Metadata.DurationInFrames)
	w.line("};")
	w.blank()
	w.line("export const Composition: React.FC = () => {")
	w.line("  return (")
	w.container("    ", "AbsoluteFill", "", main)
	w.line("  );")
	w.line("};")
	for _, component := range c.components {
		w.blank()
		w.raw(component)
	}

	source := w.String()
	return &Program{
		Source:   source,
		Blocks:   c.blocks,
		Warnings: c.warnings,
		Digest:   ir.HashWithDomain(ir.DomainRender, []byte(source)),
	}, nil
}

// compiler accumulates output while walking the element tree.
type compiler struct {
	strictEasing bool
	logger       *slog.Logger

	imports    map[string]bool
	components []string
	blocks     []Block
	warnings   []string
	err        error
}

func (c *compiler) use(names ...string) {
	for _, n := range names {
		c.imports[n] = true
	}
}

func (c *compiler) importList() []string {
	names := make([]string, 0, len(c.imports))
	for n := range c.imports {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (c *compiler) warn(e *ir.Element, format string, args ...any) {
	msg := fmt.Sprintf("element %s: %s", e.ID, fmt.Sprintf(format, args...))
	c.warnings = append(c.warnings, msg)
	c.logger.Warn("compile warning", "element", e.ID, "warning", msg)
}

// num formats a float the way canonical JSON does. A non-finite value is
// recorded as a fatal error.
func (c *compiler) num(e *ir.Element, f float64) string {
	s, err := ir.FormatNumber(f)
	if err != nil {
		if c.err == nil {
			c.err = &CompileError{Field: "properties", ElementID: e.ID, Message: err.Error()}
		}
		return "0"
	}
	return s
}

// sequences emits one <Sequence> block per element and returns the JSX
// lines, indented by indent levels of two spaces.
func (c *compiler) sequences(elems []ir.Element, path string, depth, indent int) ([]string, error) {
	var lines []string
	for i := range elems {
		e := &elems[i]
		p := fmt.Sprintf("%s[%d]", path, i)
		emit, ok := emitters[e.Type]
		if !ok {
			return nil, &CompileError{Field: p + ".type", ElementID: e.ID,
				Message: fmt.Sprintf("unknown element type %q", e.Type)}
		}

		name := fmt.Sprintf("%s%d", componentPrefix[e.Type], len(c.blocks))
		c.blocks = append(c.blocks, Block{
			ElementID:        e.ID,
			Type:             e.Type,
			From:             e.From,
			DurationInFrames: e.DurationInFrames,
			Depth:            depth,
			Component:        name,
		})

		// Reserve the slot so a parent component precedes its children.
		slot := len(c.components)
		c.components = append(c.components, "")
		component, err := c.component(name, e, emit, p, depth)
		if err != nil {
			return nil, err
		}
		c.components[slot] = component

		c.use("Sequence")
		pad := strings.Repeat("  ", indent)
		lines = append(lines,
			fmt.Sprintf("%s<Sequence from={%d} durationInFrames={%d} data-element-id=%s>",
				pad, e.From, e.DurationInFrames, attr(e.ID)),
			fmt.Sprintf("%s  <%s />", pad, name),
			pad+"</Sequence>",
		)
	}
	return lines, nil
}

// component renders the React component for one element.
func (c *compiler) component(name string, e *ir.Element, emit emitFunc, path string, depth int) (string, error) {
	anim, err := c.animations(e)
	if err != nil {
		return "", err
	}
	body, err := emit(c, e, anim, path, depth)
	if err != nil {
		return "", err
	}

	var w writer
	w.line("const %s: React.FC = () => {", name)
	if anim.usesFrame {
		c.use("useCurrentFrame")
		w.line("  const frame = useCurrentFrame();")
	}
	for _, d := range anim.decls {
		w.line("  %s", d)
	}
	w.line("  return (")
	for _, l := range body {
		w.line("    %s", l)
	}
	w.line("  );")
	w.line("};")
	return w.String(), nil
}

// style is an ordered list of style keys; setting a key twice replaces it
// in place.
type style struct {
	keys  []string
	exprs map[string]string
}

func (s *style) set(key, expr string) {
	if s.exprs == nil {
		s.exprs = map[string]string{}
	}
	if _, ok := s.exprs[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.exprs[key] = expr
}

// attr renders the style as a JSX attribute, or "" when empty.
func (s *style) attr() string {
	if len(s.keys) == 0 {
		return ""
	}
	parts := make([]string, len(s.keys))
	for i, k := range s.keys {
		parts[i] = k + ": " + s.exprs[k]
	}
	return " style={{" + strings.Join(parts, ", ") + "}}"
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// literal renders s as a JavaScript string literal.
func literal(s string) string {
	b, err := ir.MarshalCanonical(ir.String(s))
	if err != nil {
		// Canonical string encoding cannot fail.
		panic(err)
	}
	return string(b)
}

// attr renders a JSX attribute value: a plain quoted string when that is
// unambiguous, otherwise an expression.
func attr(s string) string {
	lit := literal(s)
	if lit == `"`+s+`"` {
		return lit
	}
	return "{" + lit + "}"
}

// writer builds line-oriented source text.
type writer struct {
	b strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) blank() {
	w.b.WriteByte('\n')
}

func (w *writer) raw(s string) {
	w.b.WriteString(s)
}

// container writes <tag attrs>children</tag>, or a self-closing tag when
// there are no children.
func (w *writer) container(pad, tag, attrs string, children []string) {
	if len(children) == 0 {
		w.line("%s<%s%s />", pad, tag, attrs)
		return
	}
	w.line("%s<%s%s>", pad, tag, attrs)
	for _, l := range children {
		w.line("%s", l)
	}
	w.line("%s</%s>", pad, tag)
}

func (w *writer) String() string {
	return w.b.String()
}
