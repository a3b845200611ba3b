package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/reel/internal/ir"
)

// marshalDocument converts a composition to canonical JSON TEXT and its
// digest. The digest is computed over exactly the stored bytes.
func marshalDocument(c *ir.Composition) (doc string, digest string, err error) {
	data, err := ir.CanonicalJSON(c)
	if err != nil {
		return "", "", fmt.Errorf("marshal document: %w", err)
	}
	return string(data), ir.HashWithDomain(ir.DomainComposition, data), nil
}

// unmarshalDocument parses a stored document and checks it against the
// stored digest.
func unmarshalDocument(doc, digest string) (*ir.Composition, error) {
	if got := ir.HashWithDomain(ir.DomainComposition, []byte(doc)); got != digest {
		return nil, fmt.Errorf("%w: digest %s, stored %s", ErrCorrupt, ir.ShortID(got), ir.ShortID(digest))
	}
	var c ir.Composition
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if c.Elements == nil {
		c.Elements = []ir.Element{}
	}
	if c.Patches == nil {
		c.Patches = []ir.Patch{}
	}
	return &c, nil
}

// marshalPatch converts a patch to canonical JSON TEXT.
func marshalPatch(p ir.Patch) (string, error) {
	data, err := ir.CanonicalJSON(p)
	if err != nil {
		return "", fmt.Errorf("marshal patch %d: %w", p.Seq, err)
	}
	return string(data), nil
}

func unmarshalPatch(body string) (ir.Patch, error) {
	var p ir.Patch
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return ir.Patch{}, fmt.Errorf("unmarshal patch: %w", err)
	}
	return p, nil
}
