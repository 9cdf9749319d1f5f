// Package animate turns a reconciled diff into timed transitions.
//
// # Cycles
//
// Every render cycle produces a [Transition]: one [Track] per node glyph and
// one [EdgeTrack] per connector, each tagged with the phase it runs in.
// Enter, update and exit tracks start together and share one duration.
//
//   - Entering glyphs grow out of an anchor: the nearest ancestor that was
//     visible before the cycle, at its previous position. A root seen for
//     the first time grows out of [Options.InitialAnchor].
//   - Updating glyphs move from where they are currently drawn to their
//     new position.
//   - Exiting glyphs shrink into the nearest ancestor that is still
//     visible, at its new position, and disappear when the cycle settles.
//
// Connectors are keyed by the id of their child node and follow the child's
// phase. At enter and exit time a connector is collapsed onto the anchor.
//
// # Sampling
//
// A Transition is plain data and [Transition.Sample] is a pure function of
// elapsed time, so frames can be computed by tests, served over HTTP, or
// rendered by a terminal ticker without sharing state.
//
// # Superseding
//
// [Controller.Begin] called while a cycle is in flight discards the old
// targets and starts from what is currently on the surface. Nothing is
// queued; the surface always converges to the latest requested state.
package animate
