// Package graph answers questions about the binding graph of versioned
// sets: whether one set is bound by another, which elementary cycles the
// graph contains, and which sets are reachable over binding edges.
//
// Binding edges may form cycles. Every traversal here tracks visited sets.
package graph
