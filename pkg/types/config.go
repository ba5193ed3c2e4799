package types

import "errors"

// Config selects and parameterizes a store backend.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxGroups overrides the atomic-group ceiling; 0 means the backend
	// default (DefaultMaxGroups).
	MaxGroups int `json:"max_groups" yaml:"max_groups"`

	// User and Admin configure the static identity the CLI runs as.
	User  UserRef `json:"user" yaml:"user"`
	Admin bool    `json:"admin" yaml:"admin"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// DefaultMaxGroups is the atomic-group ceiling backends apply when Config
// leaves MaxGroups at zero.
const DefaultMaxGroups = 5

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrDataDirRequired  = errors.New("data_dir required for persistent backends")
	ErrMaxGroupsInvalid = errors.New("max_groups must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendBadger: true,
}

// Validate checks that the Config is well-formed, returning a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend != BackendMemory && c.DataDir == "" {
		return ErrDataDirRequired
	}
	if c.MaxGroups < 0 {
		return ErrMaxGroupsInvalid
	}
	return nil
}

// EffectiveMaxGroups returns the configured ceiling or the default.
func (c Config) EffectiveMaxGroups() int {
	if c.MaxGroups > 0 {
		return c.MaxGroups
	}
	return DefaultMaxGroups
}
