package recorder

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Criterion is one conjunct of a [Recorded] matcher. Criteria are built with
// the With* constructors and evaluated record by record: a record satisfies
// the matcher only when every criterion holds for that same record.
type Criterion struct {
	match func(LogRecord) bool
	desc  string
}

// WithLevel matches records logged at exactly the given level.
func WithLevel(level zapcore.Level) Criterion {
	return Criterion{
		match: func(rec LogRecord) bool { return rec.Level == level },
		desc:  fmt.Sprintf("with level %q", level.CapitalString()),
	}
}

// WithSource matches records emitted through the source or one of its
// dot-separated descendants.
func WithSource(source string) Criterion {
	return Criterion{
		match: func(rec LogRecord) bool { return sourceMatches(source, rec.Source) },
		desc:  fmt.Sprintf("from source %q", source),
	}
}

// WithMessage matches records whose message is exactly msg.
func WithMessage(msg string) Criterion {
	return Criterion{
		match: func(rec LogRecord) bool { return rec.Message == msg },
		desc:  fmt.Sprintf("with a message matching %q", msg),
	}
}

// WithMessageSnippet matches records whose message contains snippet.
func WithMessageSnippet(snippet string) Criterion {
	return Criterion{
		match: func(rec LogRecord) bool { return strings.Contains(rec.Message, snippet) },
		desc:  fmt.Sprintf("with a message containing %q", snippet),
	}
}

// WithMessageRegexp matches records whose message matches re.
func WithMessageRegexp(re *regexp.Regexp) Criterion {
	return Criterion{
		match: func(rec LogRecord) bool { return re.MatchString(rec.Message) },
		desc:  fmt.Sprintf("with a message matching pattern %q", re.String()),
	}
}

// WithCause matches records whose cause chain contains target, in the
// errors.Is sense. A nil target matches records carrying no cause at all.
func WithCause(target error) Criterion {
	if target == nil {
		return Criterion{
			match: func(rec LogRecord) bool { return rec.Cause == nil },
			desc:  "with no cause",
		}
	}
	return Criterion{
		match: func(rec LogRecord) bool { return errors.Is(rec.Cause, target) },
		desc:  fmt.Sprintf("with a cause matching %q", target.Error()),
	}
}

// WithCauseType matches records whose cause chain contains an error of type
// T, in the errors.As sense.
func WithCauseType[T error]() Criterion {
	return Criterion{
		match: func(rec LogRecord) bool {
			if rec.Cause == nil {
				return false
			}
			var target T
			return errors.As(rec.Cause, &target)
		},
		desc: fmt.Sprintf("with a cause of type %v", reflect.TypeFor[T]()),
	}
}
