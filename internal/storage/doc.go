// Package storage persists artists and their next events.
//
// Production runs against a hosted libsql database (remote URL plus auth
// token); development and tests use a local sqlite file or an in-memory
// database through the modernc driver. The events table holds at most one
// row per owner, maintained by a delete-all-then-insert-one contract.
package storage
