package recorder

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// floorNone disables dispatch: no real level reaches InvalidLevel.
const floorNone = int32(zapcore.InvalidLevel)

// Registry owns a named zap logger tree and the set of attached recorders.
// Every entry emitted through a logger it handed out is delivered
// synchronously, on the emitting goroutine, to each recorder whose
// registration matches the entry; the emitting call does not return before
// delivery completed.
type Registry struct {
	mu       sync.RWMutex
	attached map[string]*attachment

	// floor caches the lowest level any attachment captures, keeping the
	// Enabled hot path to a single atomic load.
	floor *atomic.Int32

	clock zapcore.Clock
	base  *zap.Logger
}

type attachment struct {
	targets registration
	sink    listener
}

// listener receives entries that cleared a registration threshold.
type listener interface {
	observe(ent zapcore.Entry, fields []zapcore.Field)
}

// registration maps source names to the minimum captured level per source.
// The snapshot held by an attachment is never mutated after attach.
type registration map[string]zapcore.Level

// match reports whether an entry from the named logger at the given level
// clears any registered threshold. One matching source is enough.
func (t registration) match(name string, level zapcore.Level) bool {
	for source, minimum := range t {
		if level >= minimum && sourceMatches(source, name) {
			return true
		}
	}
	return false
}

type registryOptions struct {
	echo    zapcore.Core
	clock   zapcore.Clock
	zapOpts []zap.Option
}

// Option configures a Registry.
type Option func(*registryOptions)

// WithEcho tees emitted entries into the given core. The core keeps its own
// enabler, so what it writes is independent of what recorders capture.
func WithEcho(core zapcore.Core) Option {
	return func(o *registryOptions) {
		o.echo = core
	}
}

// WithConsoleEcho echoes entries at or above the enabler to stdout, using the
// zap development console encoder.
func WithConsoleEcho(enab zapcore.LevelEnabler) Option {
	return func(o *registryOptions) {
		o.echo = zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			enab,
		)
	}
}

// WithClock overrides the timestamp source of emitted entries, keeping
// echoed output deterministic in tests. Entries synthesized by a
// [WriterSource] are stamped by the same clock.
func WithClock(now func() time.Time) Option {
	return func(o *registryOptions) {
		o.clock = funcClock{now: now}
	}
}

type funcClock struct {
	now func() time.Time
}

func (c funcClock) Now() time.Time {
	return c.now()
}

func (c funcClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// NewRegistry builds a source hub with no recorders attached. Loggers handed
// out by NamedLogger stay valid for the whole lifetime of the registry while
// recorders attach and detach around them.
func NewRegistry(opts ...Option) *Registry {
	options := new(registryOptions)
	for _, opt := range opts {
		opt(options)
	}

	r := &Registry{
		attached: make(map[string]*attachment),
		floor:    atomic.NewInt32(floorNone),
		clock:    zapcore.DefaultClock,
	}
	if options.clock != nil {
		r.clock = options.clock
		options.zapOpts = append(options.zapOpts, zap.WithClock(options.clock))
	}

	core := zapcore.Core(&dispatchCore{reg: r})
	if options.echo != nil {
		core = zapcore.NewTee(options.echo, core)
	}
	r.base = zap.New(core, append([]zap.Option{zap.Development()}, options.zapOpts...)...)

	return r
}

// NamedLogger returns a logger whose entries carry the given source name.
// Loggers derived from it with Named extend the name across a dot, forming
// the hierarchy recorders match against.
func (r *Registry) NamedLogger(name string) *zap.Logger {
	return r.base.Named(name)
}

// Logger returns the unnamed root logger.
func (r *Registry) Logger() *zap.Logger {
	return r.base
}

// Sync flushes the echo core, if one was configured.
func (r *Registry) Sync() error {
	return r.base.Sync()
}

// attach adds a sink with an immutable registration snapshot and returns the
// token detach expects.
func (r *Registry) attach(sink listener, targets registration) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.attached[id] = &attachment{targets: targets, sink: sink}
	r.refloor()
	r.mu.Unlock()

	return id
}

// detach removes the attachment; entries delivered after it returns no
// longer reach the sink. Unknown tokens are ignored.
func (r *Registry) detach(id string) {
	r.mu.Lock()
	delete(r.attached, id)
	r.refloor()
	r.mu.Unlock()
}

// refloor recomputes the capture floor. Callers hold mu.
func (r *Registry) refloor() {
	floor := floorNone
	for _, a := range r.attached {
		for _, minimum := range a.targets {
			if int32(minimum) < floor {
				floor = int32(minimum)
			}
		}
	}
	r.floor.Store(floor)
}

// deliver fans one entry out to the matching sinks. The attachment set is
// copied under the read lock and delivery happens outside of it, so a sink
// may take its own lock without holding up attach and detach.
func (r *Registry) deliver(ent zapcore.Entry, fields []zapcore.Field) {
	r.mu.RLock()
	sinks := make([]*attachment, 0, len(r.attached))
	for _, a := range r.attached {
		sinks = append(sinks, a)
	}
	r.mu.RUnlock()

	for _, a := range sinks {
		if a.targets.match(ent.LoggerName, ent.Level) {
			a.sink.observe(ent, fields)
		}
	}
}

// dispatchCore feeds the zap pipeline into the registry. It implements
// zapcore.Core so delivery rides the ordinary logging path: Write runs on
// the goroutine that emitted the entry, before the logging call returns.
type dispatchCore struct {
	reg  *Registry
	with []zapcore.Field
}

func (c *dispatchCore) Enabled(level zapcore.Level) bool {
	return int32(level) >= c.reg.floor.Load()
}

func (c *dispatchCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.with)+len(fields))
	combined = append(combined, c.with...)
	combined = append(combined, fields...)
	return &dispatchCore{reg: c.reg, with: combined}
}

func (c *dispatchCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *dispatchCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if len(c.with) != 0 {
		combined := make([]zapcore.Field, 0, len(c.with)+len(fields))
		combined = append(combined, c.with...)
		combined = append(combined, fields...)
		fields = combined
	}
	c.reg.deliver(ent, fields)
	return nil
}

func (c *dispatchCore) Sync() error {
	return nil
}
