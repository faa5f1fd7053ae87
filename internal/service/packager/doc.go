// Package packager orchestrates one packaging run: it resolves the project
// root, validates the entry point, assembles the merged engine options with
// the fixed lifecycle hooks injected ahead of user-declared ones, and
// delegates the build to the packaging engine.
//
// The orchestrator performs no retry and no partial-failure recovery; every
// failure aborts the run and propagates unchanged.
package packager
