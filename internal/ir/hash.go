package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainObject   = "versets/object/v1"
	DomainSet      = "versets/set/v1"
	DomainDocument = "versets/document/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ObjectHash computes the content hash of one member object snapshot.
func ObjectHash(snapshot IRObject) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("ObjectHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainObject, canonical), nil
}

// SetHash computes the content hash of a versioned set from its member
// hashes. Callers must pass member hashes in a deterministic order.
func SetHash(setType string, memberHashes []string) (string, error) {
	members := make(IRArray, len(memberHashes))
	for i, h := range memberHashes {
		members[i] = IRString(h)
	}
	canonical, err := MarshalCanonical(IRObject{
		"type":    IRString(setType),
		"members": members,
	})
	if err != nil {
		return "", fmt.Errorf("SetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSet, canonical), nil
}

// RevisionID computes a CouchDB-style revision identifier "<n>-<hash>" for
// the n-th revision of a document. The hash covers the parent revision and
// the canonical body so identical writes on different branches differ.
func RevisionID(n int64, parentRev string, body []byte) string {
	data := make([]byte, 0, len(parentRev)+1+len(body))
	data = append(data, parentRev...)
	data = append(data, 0x00)
	data = append(data, body...)
	return fmt.Sprintf("%d-%s", n, hashWithDomain(DomainDocument, data)[:32])
}
