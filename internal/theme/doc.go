// Package theme owns the process-wide light/dark state shared by every
// mounted UI island.
//
// The store is the single source of truth: Toggle is the one write path, and
// the document styling attribute is a derived effect, never an independent
// source. Consumers are notified over two paths because historical consumers
// listen on either: an explicit broadcast to subscribers, and observation of
// the document attribute for code that flips the attribute directly. One
// logical change produces at most one notification per subscriber; the
// broadcast path wins when both would fire.
package theme
