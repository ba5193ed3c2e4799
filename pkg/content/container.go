package content

import (
	"encoding/json"
	"fmt"

	"github.com/mrdunk/routeticker/pkg/schema"
	"github.com/mrdunk/routeticker/pkg/types"
)

// ContentType classifies a tree node.
type ContentType int

// Content types, from the top of the tree down.
const (
	TypeRoot ContentType = iota + 1
	TypeArea
	TypeCrag
	TypeClimb
)

// contentTypeNames maps types to their wire/CLI names.
var contentTypeNames = map[ContentType]string{
	TypeRoot:  "root",
	TypeArea:  "area",
	TypeCrag:  "crag",
	TypeClimb: "climb",
}

// String returns the lower-case name of the content type.
func (ct ContentType) String() string {
	if n, ok := contentTypeNames[ct]; ok {
		return n
	}
	return fmt.Sprintf("ContentType(%d)", int(ct))
}

// ParseContentType maps a name back to its ContentType.
func ParseContentType(s string) (ContentType, error) {
	for ct, n := range contentTypeNames {
		if n == s {
			return ct, nil
		}
	}
	return 0, fmt.Errorf("%w: content type %q", ErrUnknownKind, s)
}

// contentTypeCheck constrains enum fields to the declared member set.
var contentTypeCheck = schema.Enum(TypeRoot, TypeArea, TypeCrag, TypeClimb)

// validKey rejects keys that cannot name a record, so menuChildren and
// attributes never hold absent entries.
func validKey(k types.Key) error {
	if !k.Valid() {
		return fmt.Errorf("%w: key %q does not name a record", schema.ErrSchemaViolation, k.String())
	}
	return nil
}

// Container is a tree-node record: active flag, content type, link to the
// parent node, ordered child links, and the keys of attached attributes.
type Container struct {
	key          types.Key
	active       schema.Field[bool]
	contentType  schema.Field[ContentType]
	menuParent   schema.Field[types.Key]
	menuChildren schema.List[types.Key]
	attributes   schema.List[types.Key]
}

// NewContainer builds an inactive, childless container of the given type.
func NewContainer(ct ContentType) (*Container, error) {
	contentType, err := schema.NewFieldDefault(contentTypeCheck, ct)
	if err != nil {
		return nil, err
	}
	return &Container{
		active:       schema.MustField(schema.Any[bool](), false),
		contentType:  contentType,
		menuParent:   schema.NewField(validKey),
		menuChildren: schema.NewList(validKey),
		attributes:   schema.NewList(validKey),
	}, nil
}

// Key returns the container's key, zero before first Put.
func (c *Container) Key() types.Key { return c.key }

// SetKey binds the container to a key.
func (c *Container) SetKey(k types.Key) { c.key = k }

// Kind returns the container kind tag.
func (c *Container) Kind() string { return types.KindContainer }

// Active reports whether the node is shown in menus.
func (c *Container) Active() bool { return c.active.Or(false) }

// SetActive sets the active flag.
func (c *Container) SetActive(v bool) error { return c.active.Set(v) }

// ContentType returns the node's type.
func (c *Container) ContentType() ContentType { return c.contentType.Or(0) }

// MenuParent returns the parent container's key, ok=false on the root.
func (c *Container) MenuParent() (types.Key, bool) { return c.menuParent.Get() }

// SetMenuParent links the node under a parent.
func (c *Container) SetMenuParent(k types.Key) error { return c.menuParent.Set(k) }

// MenuChildren returns the ordered child keys.
func (c *Container) MenuChildren() []types.Key { return c.menuChildren.Values() }

// HasMenuChild reports whether k is already a child link.
func (c *Container) HasMenuChild(k types.Key) bool {
	for i := 0; i < c.menuChildren.Len(); i++ {
		if c.menuChildren.At(i) == k {
			return true
		}
	}
	return false
}

// AppendMenuChild adds a child link at the end of the menu order.
func (c *Container) AppendMenuChild(k types.Key) error { return c.menuChildren.Append(k) }

// Attributes returns the keys of attached attribute records, in order.
func (c *Container) Attributes() []types.Key { return c.attributes.Values() }

// HasAttribute reports whether k is already attached.
func (c *Container) HasAttribute(k types.Key) bool {
	for i := 0; i < c.attributes.Len(); i++ {
		if c.attributes.At(i) == k {
			return true
		}
	}
	return false
}

// AppendAttribute attaches an attribute key.
func (c *Container) AppendAttribute(k types.Key) error { return c.attributes.Append(k) }

// Match implements query filtering for containers.
func (c *Container) Match(field string, value any) bool {
	switch field {
	case "active":
		v, ok := value.(bool)
		return ok && c.Active() == v
	case "contentType":
		v, ok := value.(ContentType)
		return ok && c.ContentType() == v
	default:
		return false
	}
}

// containerJSON is the stored form of a Container. Keys travel as their
// string rendering.
type containerJSON struct {
	Active       bool     `json:"active"`
	ContentType  string   `json:"content_type"`
	MenuParent   string   `json:"menu_parent,omitempty"`
	MenuChildren []string `json:"menu_children"`
	Attributes   []string `json:"attributes"`
}

// MarshalJSON encodes the container for storage.
func (c *Container) MarshalJSON() ([]byte, error) {
	dto := containerJSON{
		Active:       c.Active(),
		ContentType:  c.ContentType().String(),
		MenuChildren: keysToStrings(c.MenuChildren()),
		Attributes:   keysToStrings(c.Attributes()),
	}
	if p, ok := c.MenuParent(); ok {
		dto.MenuParent = p.String()
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes a stored container. The key is bound separately by
// the store.
func (c *Container) UnmarshalJSON(data []byte) error {
	var dto containerJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	ct, err := ParseContentType(dto.ContentType)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidRecord, err)
	}
	fresh, err := NewContainer(ct)
	if err != nil {
		return err
	}
	*c = *fresh
	if err := c.SetActive(dto.Active); err != nil {
		return err
	}
	if dto.MenuParent != "" {
		p, err := types.ParseKey(dto.MenuParent)
		if err != nil {
			return fmt.Errorf("%w: menu parent: %v", types.ErrInvalidRecord, err)
		}
		if err := c.SetMenuParent(p); err != nil {
			return err
		}
	}
	children, err := stringsToKeys(dto.MenuChildren)
	if err != nil {
		return fmt.Errorf("%w: menu children: %v", types.ErrInvalidRecord, err)
	}
	if err := c.menuChildren.Replace(children); err != nil {
		return err
	}
	attrs, err := stringsToKeys(dto.Attributes)
	if err != nil {
		return fmt.Errorf("%w: attributes: %v", types.ErrInvalidRecord, err)
	}
	return c.attributes.Replace(attrs)
}

func keysToStrings(keys []types.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func stringsToKeys(ss []string) ([]types.Key, error) {
	out := make([]types.Key, len(ss))
	for i, s := range ss {
		k, err := types.ParseKey(s)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}
