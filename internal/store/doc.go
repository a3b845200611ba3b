// Package store provides SQLite-backed durable storage for compositions.
//
// Each composition is stored as one canonical JSON document together with
// its version and digest. The patch log embedded in the document is
// mirrored into a patches table so that history can be listed without
// decoding whole documents.
//
// # Concurrency
//
// Save is a compare-and-swap on the version: the caller passes the version
// it loaded and the write fails with ErrVersionConflict if another writer
// got there first. The document and its patch rows change in one
// transaction.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Documents are serialized with ir.CanonicalJSON and hashed with
// ir.Digest, so a stored digest can be recomputed from the stored text.
package store
