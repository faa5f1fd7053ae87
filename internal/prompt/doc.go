// Package prompt provides minimal interactive confirmation and input helpers
// used by the orchestrators.
//
// Reads are context-aware so a cancelled run never blocks on a pending
// prompt. Non-interactive askers auto-proceed: confirmations answer yes and
// inputs return their defaults.
package prompt
