// Package engine defines the packaging engine contract and the built-in
// local engine.
//
// From the orchestrator's perspective a Package call is one opaque unit of
// work: the engine owns the copy, prune and archive steps and invokes the
// injected hook lists at its internal lifecycle points (afterCopy,
// afterExtract, afterPrune). The local engine stages sources on disk and
// leaves signing, installers and compression to external tooling.
package engine
