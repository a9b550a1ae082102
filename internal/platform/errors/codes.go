// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session lookup errors
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Session state errors
	CodeSessionInactive  Code = "SESSION_INACTIVE"
	CodeSessionFull      Code = "SESSION_FULL"
	CodeSelfJoin         Code = "SELF_JOIN"
	CodeAwaitingOpponent Code = "AWAITING_OPPONENT"

	// Authorization errors
	CodeNotYourTurn      Code = "NOT_YOUR_TURN"
	CodeUnauthorizedRead Code = "UNAUTHORIZED_READ"
	CodeNotPoolAuthority Code = "NOT_POOL_AUTHORITY"

	// Submission validation errors
	CodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"
	CodeDuplicateIndex  Code = "DUPLICATE_INDEX"
	CodeAlreadyMatched  Code = "ALREADY_MATCHED"
	CodeEmptyPlayer     Code = "EMPTY_PLAYER"

	// Ledger errors
	CodeAmountNegative      Code = "AMOUNT_NEGATIVE"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeIndexOutOfRange,
		CodeDuplicateIndex,
		CodeAlreadyMatched,
		CodeEmptyPlayer,
		CodeAmountNegative:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeSessionInactive,
		CodeSessionFull,
		CodeSelfJoin,
		CodeAwaitingOpponent,
		CodeInsufficientBalance:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks the capability
	case CodeNotYourTurn,
		CodeUnauthorizedRead,
		CodeNotPoolAuthority:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeSessionNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
