package i18n

// Error codes must match the codes defined in
// internal/platform/errors/codes.go. Duplicated as strings to avoid an
// import cycle.
const (
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionInactive     = "SESSION_INACTIVE"
	CodeSessionFull         = "SESSION_FULL"
	CodeSelfJoin            = "SELF_JOIN"
	CodeAwaitingOpponent    = "AWAITING_OPPONENT"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeUnauthorizedRead    = "UNAUTHORIZED_READ"
	CodeNotPoolAuthority    = "NOT_POOL_AUTHORITY"
	CodeIndexOutOfRange     = "INDEX_OUT_OF_RANGE"
	CodeDuplicateIndex      = "DUPLICATE_INDEX"
	CodeAlreadyMatched      = "ALREADY_MATCHED"
	CodeEmptyPlayer         = "EMPTY_PLAYER"
	CodeAmountNegative      = "AMOUNT_NEGATIVE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
)

var enUS = map[Code]string{
	CodeSessionNotFound:     "Session {{.session_id}} was not found.",
	CodeSessionInactive:     "This session has already finished.",
	CodeSessionFull:         "This session already has two players.",
	CodeSelfJoin:            "You cannot join your own session.",
	CodeAwaitingOpponent:    "The session is still waiting for an opponent.",
	CodeNotYourTurn:         "It is not your turn.",
	CodeUnauthorizedRead:    "Only session participants may view the board.",
	CodeNotPoolAuthority:    "Only the pool authority may top up the reward pool.",
	CodeIndexOutOfRange:     "Card index {{.index}} is outside the board.",
	CodeDuplicateIndex:      "Pick two different cards.",
	CodeAlreadyMatched:      "That card has already been matched.",
	CodeEmptyPlayer:         "A player identity is required.",
	CodeAmountNegative:      "Amounts must not be negative.",
	CodeInsufficientBalance: "The balance is too low for this transfer.",
}
