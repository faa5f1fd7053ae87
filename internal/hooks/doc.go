// Package hooks implements lifecycle hook lists for the packaging pipeline.
//
// A hook list is an ordered sequence of references — direct functions or
// symbolic names — bound to one of a fixed set of lifecycle events. Names
// resolve through an explicit registry populated by the orchestrators and,
// as a fallback, against executable scripts under fixed project locations
// (forge/hooks, scripts/hooks). Resolution failures surface the unresolved
// name; order is always preserved and hooks run strictly in sequence.
package hooks
