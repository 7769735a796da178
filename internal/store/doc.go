// Package store provides the persistence backends for command records.
//
// Two realizations implement Backend:
//   - SQLStore: SQLite table cmd(id, command, used_times) with a unique
//     constraint on command and an index on it
//   - FileStore: one CSV row per record (id, text, usage_count), no header
//
// # Upsert semantics
//
// All backends agree on how writes treat an existing text:
//   - Add fails with ErrDuplicateCommand when the text is present
//   - Upsert replaces the usage count of an existing text; a new text is
//     stored with a fresh id and a usage count of exactly 1
//   - InsertOrReplace writes the given usage count unconditionally
//
// Text is normalized with record.Normalize before it is compared or stored.
//
// # Durability
//
// FileStore rewrites go to a temporary file in the same directory which is
// then renamed over the store file, so a crash mid-write leaves the previous
// contents intact. SQLStore relies on statement-level atomicity; Import is the
// only multi-statement write and runs in a single transaction.
package store
