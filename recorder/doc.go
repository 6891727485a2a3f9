// Package recorder implements bounded, queryable capture of log traffic for
// test assertions.
//
// The [Registry] type owns the named zap logger tree handed to the code
// under test and fans every emitted entry out, synchronously on the emitting
// goroutine, to the recorders attached to it. [Recorder] is the capture
// buffer: sources and thresholds are declared with Record, the buffer is
// armed with Capture, and once the fixed capacity fills up each new record
// evicts the oldest one, regardless of source. Reads return most-recent-first
// snapshots and are safe while other goroutines keep logging.
//
// Assertions are expressed through the [Matcher] protocol:
//   - [Recorded] builds a conjunctive per-record predicate out of [Criterion]
//     values: [WithLevel], [WithSource], [WithMessage], [WithMessageSnippet],
//     [WithMessageRegexp], [WithCause], [WithCauseType].
//   - [Not], [AllOf], and [AnyOf] compose matchers.
//   - [AssertThat] reports failures in the expected/but-was form against any
//     testing.T-like value.
//
// Captured [Records] expose the usual observed-logs query surface:
// FilterLevelExact, FilterMessage, FilterMessageSnippet, FilterSource,
// FilterField, and FilterFieldKey.
//
// [WriterSource] adapts newline-delimited JSON output from loggers outside
// the zap tree (zerolog, slog, zap's own production encoder) into the same
// capture path.
package recorder
