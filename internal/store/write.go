package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/reel/internal/ir"
)

// Create stores a new composition. It fails with ErrExists if the id is
// already stored.
func (s *Store) Create(ctx context.Context, c *ir.Composition) error {
	doc, digest, err := marshalDocument(c)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.ID, err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO compositions (id, version, document, digest)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, c.ID, c.Version, doc, digest)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrExists
		}
		return writePatches(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", c.ID, err)
	}
	return nil
}

// Save replaces the stored document with c if the stored version still
// equals expectedVersion. The patch rows are rewritten to mirror c's log
// in the same transaction.
//
// Returns ErrNotFound if c.ID is not stored and ErrVersionConflict if the
// stored version differs from expectedVersion. c.Version must be greater
// than expectedVersion.
func (s *Store) Save(ctx context.Context, c *ir.Composition, expectedVersion int64) error {
	if c.Version <= expectedVersion {
		return fmt.Errorf("save %s: version %d does not advance past %d", c.ID, c.Version, expectedVersion)
	}
	doc, digest, err := marshalDocument(c)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.ID, err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE compositions
			SET version = ?, document = ?, digest = ?
			WHERE id = ? AND version = ?
		`, c.Version, doc, digest, c.ID, expectedVersion)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return conflict(ctx, tx, c.ID, expectedVersion)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM patches WHERE composition_id = ?`, c.ID); err != nil {
			return err
		}
		return writePatches(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", c.ID, err)
	}
	return nil
}

// conflict explains why a compare-and-swap update matched no row.
func conflict(ctx context.Context, tx *sql.Tx, id string, expected int64) error {
	var stored int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM compositions WHERE id = ?`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: stored version is %d, expected %d", ErrVersionConflict, stored, expected)
}

func writePatches(ctx context.Context, tx *sql.Tx, c *ir.Composition) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patches (composition_id, seq, id, operation, target_id, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range c.Patches {
		body, err := marshalPatch(p)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, p.Seq, p.ID, string(p.Operation), p.TargetID, body); err != nil {
			return fmt.Errorf("write patch %d: %w", p.Seq, err)
		}
	}
	return nil
}

// Delete removes a composition and its patch rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM compositions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}
