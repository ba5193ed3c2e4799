package types

import "time"

// Record is a typed, keyed entity persisted through a Store. Concrete
// schemas live in pkg/content; stores treat records opaquely apart from the
// key, the kind tag, and field matching for queries.
type Record interface {
	// Key returns the record's key; zero until first Put.
	Key() Key

	// SetKey binds the record to a key. Called by stores on first Put and
	// by decoders when hydrating.
	SetKey(Key)

	// Kind returns the record's kind tag (e.g. "Container", "AttribName").
	Kind() string

	// Match reports whether the named field equals the given value. Unknown
	// field names match nothing. Stores use this to apply query filters
	// without knowing the schema.
	Match(field string, value any) bool
}

// Stamped is implemented by records carrying created/modified timestamps.
// Stores stamp these on every Put; the engine never sets them itself.
type Stamped interface {
	// StampTimes sets modified to now, and created too if still zero.
	StampTimes(now time.Time)
}

// UserRef identifies an authoring user as reported by the identity provider.
// The zero value means "no user".
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IsZero reports whether the reference names no user.
func (u UserRef) IsZero() bool {
	return u.ID == "" && u.Email == ""
}

// Identity is the authentication/authorization capability the tree engine
// consumes. Production wires this to a real provider; tests and the CLI use
// StaticIdentity.
type Identity interface {
	// CurrentUser returns the authenticated caller, ok=false if there is
	// none.
	CurrentUser() (UserRef, bool)

	// IsAdmin reports whether the given user is an administrator.
	IsAdmin(UserRef) bool
}

// StaticIdentity is an Identity with fixed answers. The CLI builds one from
// config; tests mutate it between calls to act as different users.
type StaticIdentity struct {
	User  UserRef
	Admin bool
}

// CurrentUser returns the configured user, ok=false when it is zero.
func (s *StaticIdentity) CurrentUser() (UserRef, bool) {
	if s == nil || s.User.IsZero() {
		return UserRef{}, false
	}
	return s.User, true
}

// IsAdmin reports the configured admin flag, and only for the configured
// user.
func (s *StaticIdentity) IsAdmin(u UserRef) bool {
	return s != nil && s.Admin && u == s.User
}
