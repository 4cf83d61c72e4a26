package service

import "context"

// ApprovalGate is the external policy predicate consulted before any update
// that is not a pure "start work" transition (see TaskUpdate.StartsWork).
// The gate itself is supplied by the caller; the engine only exposes the
// proposed change so the predicate can run beforehand.
type ApprovalGate interface {
	Approve(ctx context.Context, taskID string, update TaskUpdate) error
}

// AllowAllGate approves every request. It is the default when no external
// policy layer is configured.
type AllowAllGate struct{}

// Approve always succeeds.
func (AllowAllGate) Approve(context.Context, string, TaskUpdate) error {
	return nil
}
