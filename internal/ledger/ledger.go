// Package ledger defines the token vocabulary for the reward ledger.
//
// The ledger tracks one fungible reward credit and six collectible
// kinds, one per board symbol. Balances are keyed by (address, kind)
// and live behind the storage.LedgerStore interface; this package owns
// the kind encoding and amount rules shared by every implementation.
package ledger

import (
	"errors"
	"fmt"

	"github.com/matchmint/engine/internal/board"
)

// Kind identifies a token kind on the ledger.
type Kind uint8

const (
	// KindCredit is the fungible reward credit.
	KindCredit Kind = 0
)

// KindCount is the total number of token kinds: the credit plus one
// collectible per board symbol.
const KindCount = board.SymbolKinds + 1

// ErrNegativeAmount indicates a mint or transfer with a negative amount.
var ErrNegativeAmount = errors.New("amount must be non-negative")

// CollectibleFor returns the collectible kind minted for a matched
// symbol. Collectible kinds share the symbol's numeric value (1..6).
func CollectibleFor(symbol board.Symbol) (Kind, error) {
	if symbol < 1 || symbol > board.SymbolKinds {
		return 0, fmt.Errorf("symbol %d has no collectible kind", symbol)
	}
	return Kind(symbol), nil
}

// String returns a stable label for the kind.
func (k Kind) String() string {
	if k == KindCredit {
		return "CREDIT"
	}
	if k >= 1 && k <= board.SymbolKinds {
		return fmt.Sprintf("COLLECTIBLE_%d", k)
	}
	return "UNKNOWN"
}

// Valid reports whether the kind is one the ledger tracks.
func (k Kind) Valid() bool {
	return k < KindCount
}
