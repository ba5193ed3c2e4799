package content

import (
	"encoding/json"
	"fmt"

	"github.com/mrdunk/routeticker/pkg/types"
)

// Encode renders a record to its stored JSON form. The key is not part of
// the value; stores index by key and rebind it on decode.
func Encode(rec types.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.Kind(), err)
	}
	return data, nil
}

// Decode hydrates a record of the given kind from its stored JSON form and
// binds it to key. All store backends decode through here so that a record
// round-trips identically regardless of backend.
func Decode(kind string, key types.Key, data []byte) (types.Record, error) {
	var rec types.Record
	switch {
	case kind == types.KindContainer:
		rec = &Container{}
	case IsAttribKind(kind):
		a, err := NewAttrib(kind)
		if err != nil {
			return nil, err
		}
		rec = a
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	rec.SetKey(key)
	return rec, nil
}
