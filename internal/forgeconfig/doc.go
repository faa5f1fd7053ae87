// Package forgeconfig resolves the packaging configuration stored under
// config.forge in the project manifest.
//
// A maker run sees the deep merge of the shared platform section and its own
// maker-specific section, with runtime values (architecture, source directory,
// destination) overlaid last. Merged configurations are ephemeral: they are
// recomputed on every packaging invocation and never persisted.
package forgeconfig
