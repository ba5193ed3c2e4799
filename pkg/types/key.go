package types

import (
	"errors"
	"fmt"
	"strings"
)

// Key identifies a stored record. Kind names the record schema, ID is the
// store-assigned (or well-known) identifier, and Ancestor is the ID of the
// container the record is a child of, empty for top-level records.
//
// Keys are comparable values; the zero Key means "no key".
type Key struct {
	Kind     string
	ID       string
	Ancestor string
}

// ErrBadKey is returned by ParseKey for malformed key strings.
var ErrBadKey = errors.New("malformed key")

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Kind == "" && k.ID == "" && k.Ancestor == ""
}

// Valid reports whether the key names a fetchable record: both Kind and ID
// must be present.
func (k Key) Valid() bool {
	return k.Kind != "" && k.ID != ""
}

// Group returns the entity group the key belongs to. A child record shares
// its ancestor's group; a top-level record is its own group.
func (k Key) Group() string {
	if k.Ancestor != "" {
		return k.Ancestor
	}
	return k.ID
}

// String renders the key as "Kind/ID" or "Kind/Ancestor/ID".
func (k Key) String() string {
	if k.IsZero() {
		return ""
	}
	if k.Ancestor != "" {
		return fmt.Sprintf("%s/%s/%s", k.Kind, k.Ancestor, k.ID)
	}
	return fmt.Sprintf("%s/%s", k.Kind, k.ID)
}

// ParseKey parses the String form back into a Key. A bare ID with no slash
// is accepted as a Container key, matching the lookup-by-ID-string behavior
// of the original front end.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, ErrBadKey
	}
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		return Key{Kind: KindContainer, ID: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Key{}, ErrBadKey
		}
		return Key{Kind: parts[0], ID: parts[1]}, nil
	case 3:
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Key{}, ErrBadKey
		}
		return Key{Kind: parts[0], Ancestor: parts[1], ID: parts[2]}, nil
	default:
		return Key{}, fmt.Errorf("%w: %q", ErrBadKey, s)
	}
}

// KindContainer is the kind tag of tree-node records. It lives here rather
// than in pkg/content so that ParseKey and the stores can name it without
// importing the content schemas.
const KindContainer = "Container"

// RootKey is the well-known key of the single root container.
var RootKey = Key{Kind: KindContainer, ID: "root"}
