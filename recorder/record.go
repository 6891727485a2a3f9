package recorder

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// LogRecord is an immutable snapshot of a single log event, taken at the
// moment the event was captured. Source is the dot-joined logger name the
// event was emitted through. Cause is the first error-typed field attached to
// the event, whether at the call site or earlier via Logger.With. Context
// holds a copy of every field the event carried.
type LogRecord struct {
	Source  string
	Level   zapcore.Level
	Message string
	Cause   error
	Context []zapcore.Field
}

// Records is a queryable batch of captured records, most recent first.
// Filters return fresh slices and keep the order.
type Records []LogRecord

// Len reports the number of records in the batch.
func (rs Records) Len() int {
	return len(rs)
}

// Messages returns the record messages in batch order.
func (rs Records) Messages() []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].Message
	}
	return out
}

// Filter keeps the records for which keep returns true.
func (rs Records) Filter(keep func(LogRecord) bool) Records {
	out := make(Records, 0, len(rs))
	for _, rec := range rs {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterLevelExact keeps records logged at exactly the given level.
func (rs Records) FilterLevelExact(level zapcore.Level) Records {
	return rs.Filter(func(rec LogRecord) bool {
		return rec.Level == level
	})
}

// FilterMessage keeps records whose message equals msg.
func (rs Records) FilterMessage(msg string) Records {
	return rs.Filter(func(rec LogRecord) bool {
		return rec.Message == msg
	})
}

// FilterMessageSnippet keeps records whose message contains snippet.
func (rs Records) FilterMessageSnippet(snippet string) Records {
	return rs.Filter(func(rec LogRecord) bool {
		return strings.Contains(rec.Message, snippet)
	})
}

// FilterSource keeps records emitted through the named source or one of its
// dot-separated descendants.
func (rs Records) FilterSource(source string) Records {
	return rs.Filter(func(rec LogRecord) bool {
		return sourceMatches(source, rec.Source)
	})
}

// FilterField keeps records carrying a field equal to the given one.
func (rs Records) FilterField(field zapcore.Field) Records {
	return rs.Filter(func(rec LogRecord) bool {
		for i := range rec.Context {
			if field.Equals(rec.Context[i]) {
				return true
			}
		}
		return false
	})
}

// FilterFieldKey keeps records carrying a field with the given key.
func (rs Records) FilterFieldKey(key string) Records {
	return rs.Filter(func(rec LogRecord) bool {
		for i := range rec.Context {
			if rec.Context[i].Key == key {
				return true
			}
		}
		return false
	})
}

// sourceMatches reports whether a record emitted through name falls under the
// registered source. The empty source matches every name, like the root
// logger; otherwise the name must equal the source or extend it across a dot.
func sourceMatches(source, name string) bool {
	if source == "" || source == name {
		return true
	}
	return strings.HasPrefix(name, source+".")
}

// causeOf extracts the first error-typed field, if any.
func causeOf(fields []zapcore.Field) error {
	for i := range fields {
		if fields[i].Type == zapcore.ErrorType {
			if err, ok := fields[i].Interface.(error); ok {
				return err
			}
		}
	}
	return nil
}
