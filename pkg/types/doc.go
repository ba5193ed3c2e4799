// Package types defines the store and identity capability interfaces, keys,
// records, configuration, and standard errors for the routeticker content
// tree. The tree engine in pkg/element is written purely against these
// contracts; backends under internal/ implement them.
package types
