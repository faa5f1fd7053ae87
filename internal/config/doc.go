// Package config defines workstation-level settings used by the forge
// subcommands and provides helpers to load, validate and save them in YAML
// format.
//
// Settings cover default packaging targets (platform, architecture), the
// output directory name, and the external binaries (npm, git) the
// orchestrators shell out to. Project-level packaging configuration lives in
// the project manifest instead; see the forgeconfig package.
package config
