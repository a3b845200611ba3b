package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// schema holds the compiled CUE schema. cue.Context is not safe for
// concurrent use, so every evaluation takes mu.
var schema struct {
	once sync.Once
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
	err  error
}

func loadSchema() error {
	schema.once.Do(func() {
		schema.ctx = cuecontext.New()
		schema.root = schema.ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
		schema.err = schema.root.Err()
	})
	return schema.err
}

// check unifies data (JSON or CUE source) with the named definition and
// returns the evaluated value as JSON. When wrapper is set and data has a
// top-level field of that name, the field is checked instead of the whole
// document.
func check(def, wrapper, filename string, data []byte) ([]byte, error) {
	if err := loadSchema(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schema.mu.Lock()
	defer schema.mu.Unlock()

	doc := schema.ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if wrapper != "" {
		if inner := doc.LookupPath(cue.ParsePath(wrapper)); inner.Exists() {
			doc = inner
		}
	}
	v := schema.root.LookupPath(cue.ParsePath(def)).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return out, nil
}

// Decode parses a JSON edit plan. The plan is checked against the CUE
// schema, decoded, and structurally validated; it is not resolved against
// any composition.
func Decode(data []byte) (ir.EditPlan, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ir.EditPlan{}, malformed("empty plan", nil)
	}
	if data[0] != '{' {
		return ir.EditPlan{}, malformed("plan must be a JSON object", nil)
	}
	normalized, err := check("#Plan", "", "plan.json", data)
	if err != nil {
		return ir.EditPlan{}, malformed("plan does not match schema: "+err.Error(), err)
	}

	var p ir.EditPlan
	if err := json.Unmarshal(normalized, &p); err != nil {
		return ir.EditPlan{}, malformed("decode plan: "+err.Error(), err)
	}
	if err := engine.ValidatePlan(p); err != nil {
		return ir.EditPlan{}, err
	}
	return p, nil
}

// DecodeYAML parses an edit plan written in YAML. It is converted to
// canonical JSON and then handled exactly like Decode.
func DecodeYAML(data []byte) (ir.EditPlan, error) {
	b, err := yamlToJSON(data)
	if err != nil {
		return ir.EditPlan{}, malformed("parse YAML plan: "+err.Error(), err)
	}
	return Decode(b)
}

// DecodeFile dispatches on the file extension: .yaml and .yml are read as
// YAML, anything else as JSON.
func DecodeFile(name string, data []byte) (ir.EditPlan, error) {
	switch extension(name) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	v, err := ir.FromAny(raw)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(v)
}

func malformed(msg string, err error) *engine.EditError {
	return &engine.EditError{Kind: engine.ErrMalformed, Message: msg, Err: err}
}

// DecodeSelector parses a standalone JSON selector, as used by the resolve
// command, and checks that exactly one variant is populated.
func DecodeSelector(data []byte) (ir.Selector, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return ir.Selector{}, malformed("selector must be a JSON object", nil)
	}
	normalized, err := check("#Selector", "", "selector.json", data)
	if err != nil {
		return ir.Selector{}, malformed("selector does not match schema: "+err.Error(), err)
	}

	var sel ir.Selector
	if err := json.Unmarshal(normalized, &sel); err != nil {
		return ir.Selector{}, malformed("decode selector: "+err.Error(), err)
	}
	if err := sel.Validate(); err != nil {
		return ir.Selector{}, malformed(err.Error(), err)
	}
	return sel, nil
}
