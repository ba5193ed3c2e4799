// Package content defines the record schemas of the routeticker tree:
// Container tree nodes, the versioned Attrib family attached to them, and
// the kind registry and JSON codec shared by every store backend. Field
// constraints are enforced through pkg/schema wrappers; the structs expose
// accessors only, so a schema violation can never be persisted.
package content
