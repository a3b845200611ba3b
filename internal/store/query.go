package store

import (
	"fmt"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// PatchQuery narrows a patch log listing. Zero fields match everything.
type PatchQuery struct {
	Operation ir.Operation // only patches of this operation
	TargetID  string       // only patches that touched this element
	SinceSeq  int64        // only patches with seq >= SinceSeq
	Limit     int          // at most Limit patches; 0 means no limit
}

// Validate rejects unknown operations and negative bounds.
func (q PatchQuery) Validate() error {
	if q.Operation != "" && !q.Operation.Valid() {
		return fmt.Errorf("unknown operation %q", q.Operation)
	}
	if q.SinceSeq < 0 {
		return fmt.Errorf("since must be >= 0, got %d", q.SinceSeq)
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", q.Limit)
	}
	return nil
}

// predicate is a WHERE fragment over the patches table.
// Values are never interpolated; compile returns ? placeholders and the
// matching parameters.
type predicate interface {
	compile() (string, []any)
}

// equals is column = value.
type equals struct {
	column string
	value  any
}

func (e equals) compile() (string, []any) {
	return e.column + " = ?", []any{e.value}
}

// atLeast is column >= value.
type atLeast struct {
	column string
	value  int64
}

func (a atLeast) compile() (string, []any) {
	return a.column + " >= ?", []any{a.value}
}

// and is a conjunction; an empty and is always true.
type and []predicate

func (a and) compile() (string, []any) {
	if len(a) == 0 {
		return "1 = 1", nil
	}
	parts := make([]string, 0, len(a))
	var params []any
	for _, p := range a {
		sql, ps := p.compile()
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params
}

func (q PatchQuery) filter(compositionID string) predicate {
	p := and{equals{"composition_id", compositionID}}
	if q.Operation != "" {
		p = append(p, equals{"operation", string(q.Operation)})
	}
	if q.TargetID != "" {
		p = append(p, equals{"target_id", q.TargetID})
	}
	if q.SinceSeq > 0 {
		p = append(p, atLeast{"seq", q.SinceSeq})
	}
	return p
}

// compile renders the patch query for one composition. Every query is
// ordered by seq with the patch id as a BINARY-collated tiebreaker.
func (q PatchQuery) compile(compositionID string) (string, []any) {
	where, params := q.filter(compositionID).compile()
	sql := "SELECT body FROM patches WHERE " + where + " ORDER BY seq ASC, id COLLATE BINARY ASC"
	if q.Limit > 0 {
		sql += " LIMIT ?"
		params = append(params, q.Limit)
	}
	return sql, params
}
