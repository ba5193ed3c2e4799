package types

import "testing"

func TestKeyGroup(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"top-level is its own group", Key{Kind: KindContainer, ID: "abc"}, "abc"},
		{"child shares ancestor group", Key{Kind: "AttribName", ID: "xyz", Ancestor: "abc"}, "abc"},
		{"root", RootKey, "root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Group(); got != tt.want {
				t.Errorf("Group() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyValid(t *testing.T) {
	if (Key{}).Valid() {
		t.Error("zero key must not be valid")
	}
	if (Key{Kind: KindContainer}).Valid() {
		t.Error("key without ID must not be valid")
	}
	if !(Key{Kind: KindContainer, ID: "abc"}).Valid() {
		t.Error("kind+ID key must be valid")
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	keys := []Key{
		RootKey,
		{Kind: KindContainer, ID: "0192f3a1"},
		{Kind: "AttribName", ID: "0192f3a2", Ancestor: "0192f3a1"},
	}
	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %+v, want %+v", k.String(), got, k)
		}
	}
}

func TestParseKeyBareID(t *testing.T) {
	got, err := ParseKey("root")
	if err != nil {
		t.Fatalf("ParseKey(root) error: %v", err)
	}
	if got != RootKey {
		t.Errorf("ParseKey(root) = %+v, want root container key", got)
	}
}

func TestParseKeyMalformed(t *testing.T) {
	for _, s := range []string{"", "a/", "/b", "a//c", "a/b/c/d"} {
		if _, err := ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) expected error", s)
		}
	}
}

func TestStaticIdentity(t *testing.T) {
	var ident StaticIdentity

	if _, ok := ident.CurrentUser(); ok {
		t.Error("zero identity must report no user")
	}

	alice := UserRef{ID: "1", Email: "alice@example.com"}
	ident.User = alice
	ident.Admin = true

	u, ok := ident.CurrentUser()
	if !ok || u != alice {
		t.Errorf("CurrentUser() = %+v, %v; want %+v, true", u, ok, alice)
	}
	if !ident.IsAdmin(alice) {
		t.Error("configured admin user must be admin")
	}
	if ident.IsAdmin(UserRef{ID: "2", Email: "bob@example.com"}) {
		t.Error("other users must not be admin")
	}
}
