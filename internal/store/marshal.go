package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/versets/internal/ir"
)

// marshalBody converts a document body to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so equal bodies hash to equal revisions.
func marshalBody(body ir.IRObject) ([]byte, error) {
	if body == nil {
		body = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return data, nil
}

// unmarshalBody parses canonical JSON TEXT to IRObject.
// Uses ir.IRObject.UnmarshalJSON which keeps large integers exact.
func unmarshalBody(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}
	return obj, nil
}
