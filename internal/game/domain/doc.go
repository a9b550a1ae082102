// Package domain holds the pure session state machine for the
// memory-match engine: session creation, joining, pair evaluation,
// turn advancement, and completion resolution.
//
// Functions in this package mutate only the Session value they are
// handed and perform no I/O. Every precondition failure is a distinct
// sentinel error raised before any mutation, so a failed call leaves
// the session untouched. Reward issuance is decided here but executed
// by the service layer against the ledger store.
package domain
