// Package npm wraps the external package manager and git binaries as awaited
// subprocesses.
//
// The import and package orchestrators delegate dependency installation,
// removal and pruning here; no command overlaps another, matching the strictly
// sequential execution model of the CLI.
package npm
