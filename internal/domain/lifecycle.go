package domain

// LifecycleState is the client-visible verification lifecycle:
// Idle -> Pending -> {Complete, Error} -> Idle. Re-entrant: a reset from
// Complete or Error returns to Idle before the next submission.
type LifecycleState string

const (
	StateIdle     LifecycleState = "idle"
	StatePending  LifecycleState = "pending"
	StateComplete LifecycleState = "complete"
	StateError    LifecycleState = "error"
)
