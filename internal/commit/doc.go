// Package commit decides which sets of a new state must be committed as a
// new revision.
//
// Sets that changed (created or modified) are committed. An unchanged set
// is committed too when it is bound, directly or transitively, by a
// changed set: the binding closure walks the binding graph backwards from
// the changed sets through the unchanged ones. Every other unchanged set
// is carried forward as its old instance, and committed sets that pointed
// at its new-state instance are re-pointed at the old one.
package commit
