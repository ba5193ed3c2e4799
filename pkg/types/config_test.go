package types

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"memory backend", Config{Backend: BackendMemory}, nil},
		{"sqlite with data dir", Config{Backend: BackendSQLite, DataDir: "/tmp/x"}, nil},
		{"badger with data dir", Config{Backend: BackendBadger, DataDir: "/tmp/x"}, nil},
		{"empty backend", Config{}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "redis"}, ErrBackendUnknown},
		{"sqlite without data dir", Config{Backend: BackendSQLite}, ErrDataDirRequired},
		{"negative max groups", Config{Backend: BackendMemory, MaxGroups: -1}, ErrMaxGroupsInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigEffectiveMaxGroups(t *testing.T) {
	if got := (Config{Backend: BackendMemory}).EffectiveMaxGroups(); got != DefaultMaxGroups {
		t.Errorf("default EffectiveMaxGroups() = %d, want %d", got, DefaultMaxGroups)
	}
	if got := (Config{Backend: BackendMemory, MaxGroups: 2}).EffectiveMaxGroups(); got != 2 {
		t.Errorf("EffectiveMaxGroups() = %d, want 2", got)
	}
}
