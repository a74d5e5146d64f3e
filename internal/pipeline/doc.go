// Package pipeline runs the steps that turn a community id into a
// CommunityReport: fetch the community, fetch every member's channels,
// analyze the resulting graph and, optionally, export it.
//
// Steps run in order and share one report. The first failing step stops
// the run and its error is recorded on the report. BatchProcessor runs one
// pipeline per community with bounded concurrency.
package pipeline
