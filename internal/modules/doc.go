// Package modules holds the registry of build modules.
//
// A module is a named build step (fetch STIX data, generate technique pages,
// run site tests, ...) with a priority and an action. The registry keeps two
// views over the registered modules:
//
//   - the run pool: every module scheduled for execution in this build
//   - the menu: the modules that contribute an entry to the site navigation
//
// Both views are ordered by priority and are narrowed independently by
// RemoveFromBuild when the user selects a subset of modules.
package modules
