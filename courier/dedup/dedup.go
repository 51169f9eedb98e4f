// Package dedup provides execution-deduplication stores. The engine keys
// each hop by its execution id; on redelivery of an already-applied hop the
// store reports it as seen and the hop is skipped, so the same log entry is
// never applied twice.
//
// Implementations: in-memory (single process), Redis, and Postgres.
package dedup

import "context"

// Store records which execution ids have already been applied.
type Store interface {
	// Seen reports whether the key was previously marked processed.
	Seen(ctx context.Context, key string) (bool, error)

	// MarkProcessed records the key. Marking an already-marked key is
	// not an error.
	MarkProcessed(ctx context.Context, key string) error
}
