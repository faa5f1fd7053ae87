// Package compilerc migrates legacy babel compiler configuration into the
// .compilerc sidecar document used by the compile pipeline.
//
// Settings may live inline in the manifest or in a .babelrc sidecar; either
// form ends up under the JavaScript MIME key of .compilerc, merged with any
// existing document instead of replacing it.
package compilerc
