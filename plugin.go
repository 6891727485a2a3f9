package logrecorder

import (
	"github.com/roadrunner-server/endure/v2/dep"
	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/logrecorder/recorder"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	pluginName string = "logrecorder"
)

// Logger is the dependency-injection contract this plugin provides. It is
// what other plugins ask for when they need named log output.
type Logger interface {
	NamedLogger(string) *zap.Logger
}

// Configurer unmarshals configuration sections. The config plugin provides it.
type Configurer interface {
	// UnmarshalKey takes the name of the config section and unmarshals it into the out value.
	UnmarshalKey(name string, out any) error
	// Has checks if a config section exists.
	Has(name string) bool
}

// Plugin wires a recorder.Registry into an endure container, standing in for
// the production logger plugin so tests can capture what gets logged.
type Plugin struct {
	reg *recorder.Registry
}

// NewTestLogger builds the plugin with a console echo gated by enab. Capture
// is not gated by it: recorders declare their own thresholds. The returned
// registry hands out named loggers and attaches recorders directly.
func NewTestLogger(enab zapcore.LevelEnabler) (*Plugin, *recorder.Registry) {
	reg := recorder.NewRegistry(recorder.WithConsoleEcho(enab))
	return &Plugin{reg: reg}, reg
}

// FromConfig builds the plugin from the logrecorder configuration section. A
// missing section means defaults: no echo, capture only.
func FromConfig(cfg Configurer) (*Plugin, error) {
	const op = errors.Op("logrecorder_from_config")

	conf := new(Config)
	if cfg.Has(pluginName) {
		if err := cfg.UnmarshalKey(pluginName, conf); err != nil {
			return nil, errors.E(op, err)
		}
	}
	if err := conf.InitDefault(); err != nil {
		return nil, errors.E(op, err)
	}

	var opts []recorder.Option
	if conf.Echo {
		opts = append(opts, recorder.WithEcho(conf.echoCore()))
	}

	return &Plugin{reg: recorder.NewRegistry(opts...)}, nil
}

func (p *Plugin) Init() error {
	return nil
}

func (p *Plugin) Serve() chan error {
	return make(chan error, 1)
}

// Stop flushes the echo output.
func (p *Plugin) Stop() error {
	return p.reg.Sync()
}

func (p *Plugin) Name() string {
	return pluginName
}

func (p *Plugin) Weight() uint {
	return 100
}

func (p *Plugin) Provides() []*dep.Out {
	return []*dep.Out{
		dep.Bind((*Logger)(nil), p.ProvideLogger),
	}
}

// ProvideLogger satisfies the Logger dependency of other plugins.
func (p *Plugin) ProvideLogger() *Log {
	return &Log{reg: p.reg}
}

// Registry exposes the capture side to test code.
func (p *Plugin) Registry() *recorder.Registry {
	return p.reg
}

// Log adapts the registry to the Logger contract.
type Log struct {
	reg *recorder.Registry
}

// NamedLogger returns a logger emitting under the given source name.
func (l *Log) NamedLogger(name string) *zap.Logger {
	return l.reg.NamedLogger(name)
}
