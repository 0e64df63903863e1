// Package store persists layouts.
//
// Four backends implement Store:
//
//   - MemoryStore keeps layouts in process memory (tests, embedding).
//   - FileStore serves a directory of YAML or JSON layout files, optionally
//     reloading it when files change. It is read-only.
//   - SQLiteStore keeps layouts in an SQLite database, using either the
//     cgo driver (github.com/mattn/go-sqlite3) or the pure Go driver
//     (modernc.org/sqlite).
//   - RedisStore keeps layouts in Redis for deployments sharing one store.
//
// Every backend lists layouts in storage order (insertion order for the
// writable backends, file name order for FileStore) and returns deep copies,
// so callers may not observe concurrent writes through a returned layout.
// Unknown ids yield ErrNotFound.
package store
