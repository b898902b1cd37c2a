// Package advisory implements async delivery of non-fatal advisories to a caller sink.
//
// # Components
//
//   - [Sink]: interface for event consumers.
//   - [Dispatcher]: buffered async relay. A full buffer either drops at once or waits
//     up to Config.MaxWait before dropping, so Emit never blocks indefinitely.
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. It does NOT decide which advisories to
// raise; that belongs to the profile and engine in the root package.
//
// # What this package must NOT do
//
//   - Filter or suppress events.
//   - Import prpass or any sibling internal package.
package advisory
