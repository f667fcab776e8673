// Package merge performs the three-way merge of two divergent states.
//
// For every set type present on both sides, a fresh set is built holding
// the union of both sides' members. Members that differ are merged field
// by field into a clone of the leading side's object: the leading value
// wins for scalars, references and arrays unless it is absent, sequences
// take the union and mappings take the leading keys plus the missing ones.
// Fields carrying a consistency constraint are checked after the merge and
// repaired by the constraint's Resolver when violated.
//
// A failing Resolver degrades the merge of one object, never the whole
// merge: the failure is logged, reported as a Warning and the unmerged
// leading object is kept.
package merge
