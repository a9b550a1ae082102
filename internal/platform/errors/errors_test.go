package errors

import (
	stderrors "errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorMatchingByCode(t *testing.T) {
	err := New(CodeNotYourTurn, "player bob submitted out of turn")
	if !stderrors.Is(err, New(CodeNotYourTurn, "other message")) {
		t.Fatal("errors with the same code must match")
	}
	if stderrors.Is(err, New(CodeSessionFull, "")) {
		t.Fatal("errors with different codes must not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk went away")
	err := Wrap(CodeUnknown, "persist session", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("wrapped cause must be reachable via errors.Is")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeSessionNotFound, codes.NotFound},
		{CodeSessionInactive, codes.FailedPrecondition},
		{CodeSessionFull, codes.FailedPrecondition},
		{CodeSelfJoin, codes.FailedPrecondition},
		{CodeAwaitingOpponent, codes.FailedPrecondition},
		{CodeInsufficientBalance, codes.FailedPrecondition},
		{CodeNotYourTurn, codes.PermissionDenied},
		{CodeUnauthorizedRead, codes.PermissionDenied},
		{CodeNotPoolAuthority, codes.PermissionDenied},
		{CodeIndexOutOfRange, codes.InvalidArgument},
		{CodeDuplicateIndex, codes.InvalidArgument},
		{CodeAlreadyMatched, codes.InvalidArgument},
		{CodeAmountNegative, codes.InvalidArgument},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("code %s mapped to %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestToGRPCStatus(t *testing.T) {
	err := WithMetadata(CodeIndexOutOfRange, "index 14 out of range", map[string]string{"index": "14"})
	statusErr := err.ToGRPCStatus("en-US", "Card index 14 is outside the board.")

	st, ok := status.FromError(statusErr)
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", st.Code())
	}
	if st.Message() != "index 14 out of range" {
		t.Fatalf("unexpected status message %q", st.Message())
	}
	if len(st.Details()) != 2 {
		t.Fatalf("expected 2 detail entries, got %d", len(st.Details()))
	}
}
