// Package storage defines the persistence interfaces for the
// memory-match engine: sessions, ledger balances, and the per-session
// event log. Implementations live in the memory and sqlite
// subpackages; the engine core depends only on these interfaces and
// never assumes durability.
package storage
