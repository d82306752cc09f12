// Package dexbee implements the query surface the playground consumes:
// Connect/Table/Insert/InsertMany/All/Delete/Where plus the Eq/Gt/And/Or
// condition constructors, backed by a disposable per-name in-memory SQLite
// arena.
//
// Each Connect name identifies one arena; reconnecting under the same name
// within the process reattaches to it, which is what makes a playground
// initialize idempotent across repeated page loads. Records are open
// documents: declared columns are stored natively and indexed, everything
// else rides in a JSON blob column and round-trips untouched.
package dexbee
