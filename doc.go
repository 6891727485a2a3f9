// Package logrecorder provides a RoadRunner endure plugin that records log
// traffic for test assertions.
//
// The [Plugin] type implements the endure plugin lifecycle (Init, Serve,
// Stop, Provides, Weight) and provides the [Logger] interface other plugins
// consume for named log output. Entries emitted through those loggers are
// captured by recorders attached to the underlying [recorder.Registry],
// which is returned alongside the plugin so test code can declare sources,
// bound the capture, and assert on what was logged.
//
// Two constructors are provided:
//   - [NewTestLogger] builds the plugin for integration tests, echoing
//     entries to the development console.
//   - [FromConfig] builds it from the "logrecorder" configuration section
//     (level, encoding, echo).
package logrecorder
