// Package vset defines the versioned set, the unit of versioning.
//
// A Set groups domain objects of one SetType. Sets are linked by two kinds
// of directed edges:
//
//   - binding edges: s -> t means members of s reference members of t
//     (s is bound by t). Binding edges may form cycles and are only ever
//     added after a BindingChecker confirms the reference.
//   - versioning edges: s -> t means s is a later revision of t. A fresh
//     set points at itself; a merged set points at both of its inputs.
//
// Set names carry a "<major>.<minor>" version suffix, e.g. "Shift 0.0".
package vset
