// Package types defines the DataStore and Table interfaces, the Trip entity,
// replication mutations, and the standard error types for the tripgrid
// storage layer.
//
// The grid editor depends only on these contracts; concrete stores live in
// internal/sqlite and are exposed through pkg/sqlite.
package types
