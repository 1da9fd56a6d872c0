// Package store provides SQLite-backed durable storage for dimcheck runs.
//
// Every `dimcheck check --db` records one run per model:
//   - Runs: model identity (name, content hash), outcome, versions
//   - Results: one row per expression with operands, inferred shape or the
//     incompatibility that rejected it
//
// # Ordering
//
// All ordering uses seq INTEGER (logical clock), NEVER timestamps.
// All queries include: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// # Idempotency
//
// Result ids are content addressed (ir.ResultHash); writes use
// ON CONFLICT DO NOTHING so re-recording a run is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Shapes are stored as canonical JSON arrays produced by ir.MarshalCanonical.
package store
