// Package descriptor implements the type descriptor registry.
//
// Every domain type that participates in versioning is described by an
// explicit Descriptor: its comparable fields, identity field, grouping
// strategy, divisor fields, declared bound-by relations and field
// constraints with their conflict resolvers. Descriptors are registered in
// code (Registry.Register) or declared in CUE (LoadDeclarations) and
// replace any form of runtime reflection.
//
// Objects are accessed only through the descriptor capability: Get/Set a
// named field, construct a default instance, clone, snapshot. The generic
// Record type implements these for declaration-backed types.
//
// Thread-safety: Registry is safe for concurrent use. Derived lookups
// (ordered comparable field lists) are memoized in an LRU cache populated
// under singleflight, so concurrent readers never race a writer and each
// type is computed once. The cache lives for the process lifetime and is
// dropped only by Reset.
package descriptor
