// Package compare diffs two states of versioned sets.
//
// The result is a tree: StateResult holds one SetResult per set type, each
// SetResult one ObjectResult per member and each ObjectResult one
// FieldResult per comparable field. Every node carries the old (First) and
// new (Second) side, either of which may be absent, and a Modification.
//
// Field equality is structural: sequences compare as multisets, mappings
// compare key by key, arrays compare element-wise in order, versioned
// objects compare by identity and numbers compare by value across integer
// widths.
package compare
