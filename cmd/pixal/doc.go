// Package main hosts the Pixal CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger, and hands off to the internal packages: pipeline
// for run and step, preflight for doctor, workspace for status and clean,
// validation and publish for validate and post.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it through a command or flag here.
package main
