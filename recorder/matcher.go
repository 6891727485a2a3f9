package recorder

import (
	"strings"
)

// Matcher is a deferred predicate over a recorder's buffer. String renders
// the expectation and DescribeMismatch the actual buffer content, so any
// assertion helper can print the usual expected/but-was pair without this
// package depending on an assertion library.
type Matcher interface {
	Matches(r *Recorder) bool
	String() string
	DescribeMismatch(r *Recorder) string
}

// Recorded builds a matcher satisfied when at least one buffered record
// meets every criterion at once. Criteria never combine across records: a
// level hit on one record and a message hit on another is no match. With no
// criteria the matcher is satisfied by any non-empty buffer.
//
// The matcher holds no state of its own; each Matches call scans a fresh
// snapshot, so one matcher value can be polled until the traffic it waits
// for arrives.
func Recorded(criteria ...Criterion) Matcher {
	return &recordedMatcher{criteria: criteria}
}

type recordedMatcher struct {
	criteria []Criterion
}

func (m *recordedMatcher) Matches(r *Recorder) bool {
	for _, rec := range r.Records() {
		if m.matchesRecord(rec) {
			return true
		}
	}
	return false
}

func (m *recordedMatcher) matchesRecord(rec LogRecord) bool {
	for _, c := range m.criteria {
		if !c.match(rec) {
			return false
		}
	}
	return true
}

func (m *recordedMatcher) String() string {
	var b strings.Builder
	b.WriteString("has LogRecord")
	for _, c := range m.criteria {
		b.WriteByte(' ')
		b.WriteString(c.desc)
	}
	return b.String()
}

func (m *recordedMatcher) DescribeMismatch(r *Recorder) string {
	return describeRecords(r.Records())
}

// describeRecords renders the buffer as was <LEVEL->message,...>, most
// recent first, which is what failure output quotes.
func describeRecords(records Records) string {
	var b strings.Builder
	b.WriteString("was <")
	for i, rec := range records {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(rec.Level.CapitalString())
		b.WriteString("->")
		b.WriteString(rec.Message)
	}
	b.WriteByte('>')
	return b.String()
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return &notMatcher{inner: m}
}

type notMatcher struct {
	inner Matcher
}

func (m *notMatcher) Matches(r *Recorder) bool {
	return !m.inner.Matches(r)
}

func (m *notMatcher) String() string {
	return "not " + m.inner.String()
}

func (m *notMatcher) DescribeMismatch(r *Recorder) string {
	return describeRecords(r.Records())
}

// AllOf is satisfied when every given matcher is satisfied.
func AllOf(ms ...Matcher) Matcher {
	return &allOfMatcher{matchers: ms}
}

type allOfMatcher struct {
	matchers []Matcher
}

func (m *allOfMatcher) Matches(r *Recorder) bool {
	for _, inner := range m.matchers {
		if !inner.Matches(r) {
			return false
		}
	}
	return true
}

func (m *allOfMatcher) String() string {
	return joinMatchers(m.matchers, " and ")
}

func (m *allOfMatcher) DescribeMismatch(r *Recorder) string {
	return describeRecords(r.Records())
}

// AnyOf is satisfied when at least one given matcher is satisfied.
func AnyOf(ms ...Matcher) Matcher {
	return &anyOfMatcher{matchers: ms}
}

type anyOfMatcher struct {
	matchers []Matcher
}

func (m *anyOfMatcher) Matches(r *Recorder) bool {
	for _, inner := range m.matchers {
		if inner.Matches(r) {
			return true
		}
	}
	return false
}

func (m *anyOfMatcher) String() string {
	return joinMatchers(m.matchers, " or ")
}

func (m *anyOfMatcher) DescribeMismatch(r *Recorder) string {
	return describeRecords(r.Records())
}

func joinMatchers(ms []Matcher, sep string) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = "(" + m.String() + ")"
	}
	return strings.Join(parts, sep)
}

// TestingT is the minimal testing surface AssertThat needs. *testing.T and
// testify's TestingT both satisfy it.
type TestingT interface {
	Errorf(format string, args ...any)
}

type tHelper interface {
	Helper()
}

// AssertThat checks the matcher against the recorder and reports a failure
// in the expected/but-was form. It returns true when the matcher matched.
func AssertThat(t TestingT, r *Recorder, m Matcher) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if m.Matches(r) {
		return true
	}
	t.Errorf("\nExpected: %s\n     but: %s", m.String(), m.DescribeMismatch(r))
	return false
}
