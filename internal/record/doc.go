// Package record defines the CommandRecord data model shared by every store.
//
// A record is identified inside its store by its normalized text; the numeric
// id is assigned by the owning store and never reused, and the usage count
// only grows while the record survives.
package record
