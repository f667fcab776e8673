// Package ir provides the constrained value representation used to
// snapshot versioned sets and compute their content hashes.
//
// This package imports nothing internal. Everything that needs a stable
// byte representation of domain data (set content hashes, document bodies,
// revision IDs, golden diff snapshots) goes through MarshalCanonical.
//
// Key design constraints:
//   - NO float types in IR values; callers render floats as strings
//   - NO null in canonical JSON; absent fields are omitted
//   - Object keys ordered by UTF-16 code units (RFC 8785)
package ir
