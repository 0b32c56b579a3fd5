// Package repositories implements SQLite persistence for the client's durable state.
//
// The only durable state is the session pair kept by [SessionRepository] in the session_store key/value table.
// Both keys are written in one transaction and deleted in one transaction, so a reader never observes a token
// without its identity or the reverse.
package repositories
