// Package manifest reads and writes the project manifest (package.json).
//
// The Manifest type exposes the fields the orchestrators care about
// (dependencies, entry point, the config.forge block, the legacy babel block)
// through typed accessors, while unknown fields ride along untouched in a
// passthrough bag. Persistence follows a plain read-modify-write cycle;
// last writer wins.
package manifest
