// Package restore persists the last known state of number entities so that
// values survive a restart.
//
// Records are keyed by entity unique id and stored as JSON in the
// restore_state table created by the embedded migrations. Reads are
// forgiving: a missing or malformed record is reported as absent.
package restore
