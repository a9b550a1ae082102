package domain

// Fixed engine rules. These values are part of the wire contract with
// existing clients and must not drift.
const (
	// RewardPerMatch is the fungible credit amount minted to a player
	// for every matched pair.
	RewardPerMatch = 10

	// CompletionBonus is the fungible credit amount transferred from
	// the pool authority to the winner when a board completes. The
	// bonus is skipped, not an error, when the pool cannot cover it.
	CompletionBonus = 50

	// InitialPoolSupply is the fungible credit supply minted to the
	// pool authority when the ledger is initialized.
	InitialPoolSupply = 1_000_000
)
