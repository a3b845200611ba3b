package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/reel/internal/ir"
)

// Summary describes a stored composition without decoding it.
type Summary struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
	Digest  string `json:"digest"`
	Patches int    `json:"patches"`
}

// Load returns the stored composition with the given id.
// Returns ErrNotFound if there is none and ErrCorrupt if the stored text no
// longer matches its digest.
func (s *Store) Load(ctx context.Context, id string) (*ir.Composition, error) {
	var doc, digest string
	err := s.db.QueryRowContext(ctx, `
		SELECT document, digest FROM compositions WHERE id = ?
	`, id).Scan(&doc, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	c, err := unmarshalDocument(doc, digest)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return c, nil
}

// List returns a summary of every stored composition, ordered by id.
//
// Returns an empty slice (not nil) if nothing is stored.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.version, c.digest, COUNT(p.seq)
		FROM compositions c
		LEFT JOIN patches p ON p.composition_id = c.id
		GROUP BY c.id
		ORDER BY c.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query compositions: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Version, &sum.Digest, &sum.Patches); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compositions: %w", err)
	}
	return summaries, nil
}

// ListPatches returns the patch log of a composition ordered by seq.
// Returns ErrNotFound if the composition is not stored.
func (s *Store) ListPatches(ctx context.Context, id string) ([]ir.Patch, error) {
	return s.QueryPatches(ctx, id, PatchQuery{})
}

// QueryPatches returns the patches of a composition that match q, ordered
// by seq. Returns ErrNotFound if the composition is not stored.
func (s *Store) QueryPatches(ctx context.Context, id string, q PatchQuery) ([]ir.Patch, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("query patches %s: %w", id, err)
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM compositions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query patches %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query patches %s: %w", id, err)
	}

	query, params := q.compile(id)
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query patches: %w", err)
	}
	defer rows.Close()

	patches := []ir.Patch{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan patch: %w", err)
		}
		p, err := unmarshalPatch(body)
		if err != nil {
			return nil, err
		}
		patches = append(patches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patches: %w", err)
	}
	return patches, nil
}
