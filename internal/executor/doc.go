// Package executor runs a routine's actions in order on a background worker.
//
// Steps execute strictly sequentially and failures are isolated: a failed
// action is reported to the listener and execution continues with the next
// one. Cancellation is cooperative, checked between steps, and never kills an
// action already handed to the OS. All runs serialize through a single gate so
// a manual trigger and a scheduled trigger cannot interleave their steps.
package executor
