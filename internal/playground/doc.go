// Package playground owns the interactive playground session lifecycle.
//
// A session is a small state machine over one ephemeral dexbee handle:
// Uninitialized -> Initializing -> Ready <-> Running <-> Resetting. Ready is
// the only state from which a run or reset may start, and both settle back to
// Ready whether they succeed or fail. The state flag is the sole concurrency
// control: an operation that finds the session in the wrong state is rejected
// immediately, never queued.
package playground
