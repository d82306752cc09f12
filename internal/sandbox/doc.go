// Package sandbox executes user-supplied source text inside a goja VM whose
// only addressable names are an explicit set of injected bindings.
//
// Source is compiled as the body of an async function parameterized on the
// binding names, so nothing leaks in from ambient scope; the usual Node-style
// escape hatches are additionally scrubbed from the VM. Output written to the
// injected console facade is captured line by line, and every failure mode
// (compile error, thrown value, rejected await) is folded into the Outcome
// rather than surfaced to the host.
//
// This is an ambient-authority sandbox, not a security boundary: bindings
// share the host process. Isolation-sensitive deployments should move the
// evaluator out of process and keep only the message-passing capability set.
package sandbox
