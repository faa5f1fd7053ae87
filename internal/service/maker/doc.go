// Package maker turns staged platform builds into distributable artifacts.
//
// Run chains a packaging run with the configured make targets for the
// platform, resolving each target's merged configuration before archiving.
//
// The generic zip maker is the only built-in strategy: it archives the staged
// directory (or the .app bundle on the darwin family) into a deterministic
// path next to the staged build. Installer-style makers remain external
// tooling invoked by users from their own configuration.
package maker
