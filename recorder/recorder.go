package recorder

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// Recorder is a bounded capture buffer over a registry's log traffic.
//
// A recorder moves through three states. It starts inactive: Record declares
// which sources to capture and at which minimum level. Capture arms it, from
// which point matching records accumulate in a fixed-capacity ring shared by
// all declared sources. Close detaches it and freezes the buffer read-only.
// Between Capture and Close every method is safe for concurrent use.
type Recorder struct {
	reg *Registry

	mu      sync.Mutex
	targets registration
	ring    []LogRecord
	head    int
	count   int
	id      string

	active *atomic.Bool
	closed *atomic.Bool
}

// New returns an inactive recorder bound to the registry. Declare sources
// with Record, then arm it with Capture.
func New(reg *Registry) *Recorder {
	return &Recorder{
		reg:     reg,
		targets: make(registration),
		active:  atomic.NewBool(false),
		closed:  atomic.NewBool(false),
	}
}

// Record declares that events emitted through source, at minimum or above,
// are captured once the recorder is armed. The source also covers its
// dot-separated descendants, and "" covers everything. Declaring a source
// again replaces its threshold. Calls after Capture or Close are no-ops.
func (r *Recorder) Record(source string, minimum zapcore.Level) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active.Load() || r.closed.Load() {
		return r
	}
	r.targets[source] = minimum
	return r
}

// Capture arms the recorder with a ring of the given capacity and attaches
// it to the registry. When the ring is full, each new record evicts the
// oldest buffered one, regardless of source. The capacity must be positive;
// anything else is a programming error and panics before any state changes.
// Capture on an armed or closed recorder is a no-op.
func (r *Recorder) Capture(capacity int) *Recorder {
	if capacity <= 0 {
		panic(fmt.Sprintf("recorder: capture capacity must be positive, got %d", capacity))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active.Load() || r.closed.Load() {
		return r
	}

	r.ring = make([]LogRecord, capacity)
	targets := make(registration, len(r.targets))
	for source, minimum := range r.targets {
		targets[source] = minimum
	}
	r.active.Store(true)
	r.id = r.reg.attach(r, targets)
	return r
}

// observe appends one record. It runs on the emitting goroutine; the
// registry has already matched the entry against the registration snapshot.
func (r *Recorder) observe(ent zapcore.Entry, fields []zapcore.Field) {
	if r.closed.Load() {
		return
	}

	rec := LogRecord{
		Source:  ent.LoggerName,
		Level:   ent.Level,
		Message: ent.Message,
		Cause:   causeOf(fields),
	}
	if len(fields) != 0 {
		rec.Context = make([]zapcore.Field, len(fields))
		copy(rec.Context, fields)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// recheck under the lock, Close may have won the race
	if r.closed.Load() {
		return
	}
	r.ring[r.head] = rec
	r.head = (r.head + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
}

// Messages returns the captured messages, most recent first. The slice is a
// snapshot: the recorder keeps capturing after it is taken, and iterating it
// is safe while other goroutines emit.
func (r *Recorder) Messages() []string {
	return r.Records().Messages()
}

// Records returns a snapshot of the captured records, most recent first.
func (r *Recorder) Records() Records {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// TakeAll returns a snapshot of the captured records, most recent first, and
// drops them from the buffer. The recorder stays armed.
func (r *Recorder) TakeAll() Records {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.snapshot()
	clear(r.ring)
	r.head = 0
	r.count = 0
	return out
}

// snapshot builds the most-recent-first copy. Callers hold mu.
func (r *Recorder) snapshot() Records {
	out := make(Records, 0, r.count)
	for i := 1; i <= r.count; i++ {
		out = append(out, r.ring[(r.head-i+len(r.ring))%len(r.ring)])
	}
	return out
}

// Len reports how many records are buffered.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset drops the buffered records. The recorder stays armed.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.ring)
	r.head = 0
	r.count = 0
}

// Filter returns the buffered records for which keep returns true.
func (r *Recorder) Filter(keep func(LogRecord) bool) Records {
	return r.Records().Filter(keep)
}

// FilterLevelExact returns the buffered records logged at exactly the level.
func (r *Recorder) FilterLevelExact(level zapcore.Level) Records {
	return r.Records().FilterLevelExact(level)
}

// FilterMessage returns the buffered records whose message equals msg.
func (r *Recorder) FilterMessage(msg string) Records {
	return r.Records().FilterMessage(msg)
}

// FilterMessageSnippet returns the buffered records whose message contains
// snippet.
func (r *Recorder) FilterMessageSnippet(snippet string) Records {
	return r.Records().FilterMessageSnippet(snippet)
}

// FilterSource returns the buffered records emitted through the named source
// or one of its dot-separated descendants.
func (r *Recorder) FilterSource(source string) Records {
	return r.Records().FilterSource(source)
}

// FilterField returns the buffered records carrying a field equal to the
// given one.
func (r *Recorder) FilterField(field zapcore.Field) Records {
	return r.Records().FilterField(field)
}

// FilterFieldKey returns the buffered records carrying a field with the
// given key.
func (r *Recorder) FilterFieldKey(key string) Records {
	return r.Records().FilterFieldKey(key)
}

// Close detaches the recorder from the registry and freezes the buffer.
// Records captured so far stay readable. Close is idempotent and safe to
// call while other goroutines emit: an emit that raced the close either
// lands in the buffer or is dropped whole.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Swap(true) {
		return nil
	}
	if r.active.Load() {
		r.reg.detach(r.id)
	}
	return nil
}
