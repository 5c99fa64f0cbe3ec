// Package bisect implements the bisection root-finding engine and its run
// state machine.
//
//   - [Engine]: owns the bracketing interval, iteration count and run state
//   - [RunConfig]: validated once per run by [Engine.Configure]
//   - [StepResult]: immutable snapshot emitted by every step
//   - [Event]: queued hand-off to the display side
//
// # Lifecycle
//
//	Idle --Configure--> Idle --Start(Manual)--> AwaitingStep --Step--> Converged | Exhausted
//	Idle --Configure--> Idle --Start(Auto)----> Running --timer--> Converged | Exhausted
//	any --Stop--> Stopped (terminal states are kept)
//	any --Reset--> Idle
//
// # Thread Safety
//
// Engine methods are safe for concurrent use. An auto run executes on one
// background goroutine; while it is active the foreground may only Stop,
// Reset or reconfigure. Step results reach the display through [Engine.Events],
// never by calling display code from the background goroutine.
package bisect
