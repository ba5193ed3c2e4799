package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mrdunk/routeticker/pkg/schema"
	"github.com/mrdunk/routeticker/pkg/types"
)

// Attrib kind tags. The set is closed; NewAttrib dispatches on it.
const (
	KindName        = "AttribName"
	KindDescription = "AttribDescription"
)

// Attrib family errors.
var (
	// ErrUnknownKind reports a kind tag outside the registry.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrKindMismatch reports a Populate between different attribute kinds.
	ErrKindMismatch = errors.New("attribute kind mismatch")
)

// Attrib is a versioned, user-attributed record attached to a container.
// It is a child of exactly one container in the store's key hierarchy; the
// container is addressed through the attribute key's Ancestor, not a field.
type Attrib interface {
	types.Record
	types.Stamped

	// Author is the user the instance is attributed to.
	Author() types.UserRef
	// SetAuthor stamps the author; the engine sets it to the caller.
	SetAuthor(types.UserRef) error
	// Active marks the sibling instance currently displayed for its kind.
	Active() bool
	SetActive(bool) error
	// Created and Modified are stamped by the store on write.
	Created() time.Time
	Modified() time.Time

	// Populate copies the payload fields and the active flag from src onto
	// this instance, preserving key, author, and created stamp. Fails with
	// ErrKindMismatch across kinds.
	Populate(src Attrib) error
}

// attribFactories is the kind-to-schema registry. Closed set: kinds are
// resolved by tag, never by dynamic name lookup.
var attribFactories = map[string]func() Attrib{
	KindName:        func() Attrib { return NewName("") },
	KindDescription: func() Attrib { return NewDescription("") },
}

// attribKindOrder fixes the enumeration order of the registry.
var attribKindOrder = []string{KindName, KindDescription}

// NewAttrib builds an empty attribute of the given kind.
func NewAttrib(kind string) (Attrib, error) {
	f, ok := attribFactories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return f(), nil
}

// IsAttribKind reports whether kind names a registered attribute schema.
func IsAttribKind(kind string) bool {
	_, ok := attribFactories[kind]
	return ok
}

// AttribKinds returns the registered kind tags in registry order.
func AttribKinds() []string {
	out := make([]string, len(attribKindOrder))
	copy(out, attribKindOrder)
	return out
}

// attribCore carries the fields every attribute kind shares.
type attribCore struct {
	key      types.Key
	author   schema.Field[types.UserRef]
	active   schema.Field[bool]
	created  time.Time
	modified time.Time
}

func newAttribCore() attribCore {
	return attribCore{
		author: schema.NewField(schema.Any[types.UserRef]()),
		active: schema.MustField(schema.Any[bool](), false),
	}
}

func (a *attribCore) Key() types.Key            { return a.key }
func (a *attribCore) SetKey(k types.Key)        { a.key = k }
func (a *attribCore) Author() types.UserRef     { return a.author.Or(types.UserRef{}) }
func (a *attribCore) SetAuthor(u types.UserRef) error { return a.author.Set(u) }
func (a *attribCore) Active() bool              { return a.active.Or(false) }
func (a *attribCore) SetActive(v bool) error    { return a.active.Set(v) }
func (a *attribCore) Created() time.Time        { return a.created }
func (a *attribCore) Modified() time.Time       { return a.modified }

// StampTimes sets modified, and created on first write.
func (a *attribCore) StampTimes(now time.Time) {
	if a.created.IsZero() {
		a.created = now
	}
	a.modified = now
}

// matchCore filters on the shared fields.
func (a *attribCore) matchCore(field string, value any) (matched, handled bool) {
	switch field {
	case "author":
		v, ok := value.(types.UserRef)
		return ok && a.Author() == v, true
	case "active":
		v, ok := value.(bool)
		return ok && a.Active() == v, true
	}
	return false, false
}

// attribJSON is the stored form shared by all attribute kinds.
type attribJSON struct {
	Author   types.UserRef `json:"author"`
	Created  time.Time     `json:"created"`
	Modified time.Time     `json:"modified"`
	Active   bool          `json:"active"`
	Text     string        `json:"text"`
}

func (a *attribCore) encode(text string) ([]byte, error) {
	return json.Marshal(attribJSON{
		Author:   a.Author(),
		Created:  a.created,
		Modified: a.modified,
		Active:   a.Active(),
		Text:     text,
	})
}

func (a *attribCore) decode(data []byte) (text string, err error) {
	var dto attribJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return "", err
	}
	*a = newAttribCore()
	if !dto.Author.IsZero() {
		if err := a.SetAuthor(dto.Author); err != nil {
			return "", err
		}
	}
	if err := a.SetActive(dto.Active); err != nil {
		return "", err
	}
	a.created = dto.Created
	a.modified = dto.Modified
	return dto.Text, nil
}

// nameTextLimit bounds name attributes; names are menu labels, not prose.
const nameTextLimit = 500

func maxLen(n int) schema.Validator[string] {
	return func(s string) error {
		if len(s) > n {
			return fmt.Errorf("%w: text exceeds %d bytes", schema.ErrSchemaViolation, n)
		}
		return nil
	}
}

// AttribName is a short display name for a container.
type AttribName struct {
	attribCore
	text schema.Field[string]
}

// NewName builds a name attribute with the given text. Text over the name
// length limit is truncated to fit rather than rejected, since NewName has
// no error to return; SetText reports the violation instead. The cut backs
// off to a rune boundary so truncation never leaves invalid UTF-8.
func NewName(text string) *AttribName {
	if len(text) > nameTextLimit {
		cut := nameTextLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	a := &AttribName{
		attribCore: newAttribCore(),
		text:       schema.NewField(maxLen(nameTextLimit)),
	}
	_ = a.text.Set(text)
	return a
}

// Kind returns the name kind tag.
func (a *AttribName) Kind() string { return KindName }

// Text returns the name text.
func (a *AttribName) Text() string { return a.text.Or("") }

// SetText replaces the name text, enforcing the length limit.
func (a *AttribName) SetText(s string) error { return a.text.Set(s) }

// Populate copies text and active flag from another name attribute.
func (a *AttribName) Populate(src Attrib) error {
	other, ok := src.(*AttribName)
	if !ok {
		return fmt.Errorf("%w: %s vs %s", ErrKindMismatch, a.Kind(), src.Kind())
	}
	if err := a.SetText(other.Text()); err != nil {
		return err
	}
	return a.SetActive(other.Active())
}

// Match implements query filtering on author and active.
func (a *AttribName) Match(field string, value any) bool {
	matched, _ := a.matchCore(field, value)
	return matched
}

// MarshalJSON encodes the attribute for storage.
func (a *AttribName) MarshalJSON() ([]byte, error) { return a.encode(a.Text()) }

// UnmarshalJSON decodes a stored name attribute.
func (a *AttribName) UnmarshalJSON(data []byte) error {
	text, err := a.attribCore.decode(data)
	if err != nil {
		return err
	}
	a.text = schema.NewField(maxLen(nameTextLimit))
	return a.text.Set(text)
}

// AttribDescription is free-form descriptive text for a container. Unlike
// names, description text is unbounded.
type AttribDescription struct {
	attribCore
	text schema.Field[string]
}

// NewDescription builds a description attribute with the given text.
func NewDescription(text string) *AttribDescription {
	a := &AttribDescription{
		attribCore: newAttribCore(),
		text:       schema.NewField(schema.Any[string]()),
	}
	_ = a.text.Set(text)
	return a
}

// Kind returns the description kind tag.
func (a *AttribDescription) Kind() string { return KindDescription }

// Text returns the description text.
func (a *AttribDescription) Text() string { return a.text.Or("") }

// SetText replaces the description text.
func (a *AttribDescription) SetText(s string) error { return a.text.Set(s) }

// Populate copies text and active flag from another description attribute.
func (a *AttribDescription) Populate(src Attrib) error {
	other, ok := src.(*AttribDescription)
	if !ok {
		return fmt.Errorf("%w: %s vs %s", ErrKindMismatch, a.Kind(), src.Kind())
	}
	if err := a.SetText(other.Text()); err != nil {
		return err
	}
	return a.SetActive(other.Active())
}

// Match implements query filtering on author and active.
func (a *AttribDescription) Match(field string, value any) bool {
	matched, _ := a.matchCore(field, value)
	return matched
}

// MarshalJSON encodes the attribute for storage.
func (a *AttribDescription) MarshalJSON() ([]byte, error) { return a.encode(a.Text()) }

// UnmarshalJSON decodes a stored description attribute.
func (a *AttribDescription) UnmarshalJSON(data []byte) error {
	text, err := a.attribCore.decode(data)
	if err != nil {
		return err
	}
	a.text = schema.NewField(schema.Any[string]())
	return a.text.Set(text)
}
