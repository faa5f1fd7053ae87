// Package importer migrates an existing project into the forge packaging
// convention.
//
// The import is a strictly sequential state machine over one project
// directory: confirmation gates, git initialization, legacy dependency
// stripping, manifest rewriting, dependency reinstallation, template
// configuration injection, ignore-file maintenance and compiler configuration
// migration. A missing directory or manifest aborts before any mutation;
// declined confirmations exit cleanly; every other failure propagates.
package importer
