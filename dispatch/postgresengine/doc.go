// Package postgresengine provides a PostgreSQL-backed unit-of-work factory
// and idempotency store for the dispatch engine.
//
// Each unit of work owns one database transaction. Command handlers obtain
// the unit of work from the dispatch context and run their statements through
// Exec/Query so they join that transaction; SaveChanges writes the recorded
// domain events into a transactional outbox table inside the same
// transaction, and CommitTransaction makes both the state change and the
// outbox entries durable atomically.
//
// The engine supports three database access layers behind a common adapter
// interface: pgxpool.Pool (recommended), sqlx.DB, and database/sql.
//
// Expected schema:
//
//	CREATE TABLE dispatch_outbox (
//	    event_id    UUID PRIMARY KEY,
//	    event_type  TEXT NOT NULL,
//	    payload     JSONB NOT NULL,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE dispatch_processed_events (
//	    event_id         UUID NOT NULL,
//	    event_type       TEXT NOT NULL,
//	    handler_identity TEXT NOT NULL,
//	    processed_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (event_id, handler_identity)
//	);
package postgresengine
