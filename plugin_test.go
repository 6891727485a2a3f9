package logrecorder

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/roadrunner-server/endure/v2"
	"github.com/roadrunner-server/logrecorder/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type configurerStub struct {
	has       bool
	err       error
	unmarshal func(out any)
}

func (c *configurerStub) UnmarshalKey(_ string, out any) error {
	if c.err != nil {
		return c.err
	}
	if c.unmarshal != nil {
		c.unmarshal(out)
	}
	return nil
}

func (c *configurerStub) Has(string) bool {
	return c.has
}

func TestNewTestLoggerCapturesThroughProvidedLogger(t *testing.T) {
	p, reg := NewTestLogger(zapcore.DebugLevel)
	require.NoError(t, p.Init())

	rec := recorder.New(reg).Record("server", zapcore.InfoLevel).Capture(4)
	defer func() {
		require.NoError(t, rec.Close())
	}()

	p.ProvideLogger().NamedLogger("server").Info("plugin started")

	assert.Equal(t, []string{"plugin started"}, rec.Messages())
	recorder.AssertThat(t, rec, recorder.Recorded(
		recorder.WithLevel(zapcore.InfoLevel),
		recorder.WithMessage("plugin started"),
	))

	_ = p.Stop() // the console echo syncs stdout, which not every platform allows
}

func TestPluginLifecycleContract(t *testing.T) {
	p, _ := NewTestLogger(zapcore.ErrorLevel)

	require.NoError(t, p.Init())
	assert.Equal(t, pluginName, p.Name())
	assert.Equal(t, uint(100), p.Weight())
	assert.Len(t, p.Provides(), 1)

	serveCh := p.Serve()
	assert.Empty(t, serveCh)
}

// driverPlugin stands in for a plugin that asks the container for the Logger
// dependency, the way the jobs drivers do.
type driverPlugin struct {
	log *zap.Logger
}

func (d *driverPlugin) Init(l Logger) error {
	d.log = l.NamedLogger("driver")
	d.log.Info("driver initialized")
	return nil
}

func (d *driverPlugin) Serve() chan error {
	return make(chan error, 1)
}

func (d *driverPlugin) Stop(context.Context) error {
	d.log.Info("driver stopped")
	return nil
}

func (d *driverPlugin) Name() string {
	return "driver"
}

func TestEndureContainerWiring(t *testing.T) {
	p, reg := NewTestLogger(zapcore.ErrorLevel)

	rec := recorder.New(reg).Record("driver", zapcore.InfoLevel).Capture(8)
	defer func() {
		require.NoError(t, rec.Close())
	}()

	cont := endure.New(slog.LevelError)
	require.NoError(t, cont.RegisterAll(p, &driverPlugin{}))
	require.NoError(t, cont.Init())

	// Init already ran with the injected logger
	recorder.AssertThat(t, rec, recorder.Recorded(
		recorder.WithSource("driver"),
		recorder.WithMessage("driver initialized"),
	))

	ch, err := cont.Serve()
	require.NoError(t, err)

	require.NoError(t, cont.Stop())
	require.Empty(t, ch)

	recorder.AssertThat(t, rec, recorder.Recorded(
		recorder.WithLevel(zapcore.InfoLevel),
		recorder.WithMessage("driver stopped"),
	))
}

func TestFromConfigDefaults(t *testing.T) {
	p, err := FromConfig(&configurerStub{has: false})
	require.NoError(t, err)

	rec := recorder.New(p.Registry()).Record("jobs", zapcore.DebugLevel).Capture(2)
	defer func() {
		require.NoError(t, rec.Close())
	}()

	p.ProvideLogger().NamedLogger("jobs").Debug("queued")

	assert.Equal(t, []string{"queued"}, rec.Messages())
	// no echo configured, so Stop has nothing to flush
	assert.NoError(t, p.Stop())
}

func TestFromConfigEchoDoesNotGateCapture(t *testing.T) {
	cfg := &configurerStub{has: true, unmarshal: func(out any) {
		conf := out.(*Config)
		conf.Level = "warn"
		conf.Encoding = "json"
		conf.Echo = true
	}}

	p, err := FromConfig(cfg)
	require.NoError(t, err)

	rec := recorder.New(p.Registry()).Record("jobs", zapcore.DebugLevel).Capture(4)
	defer func() {
		require.NoError(t, rec.Close())
	}()

	// below the echo level, still captured
	p.ProvideLogger().NamedLogger("jobs").Debug("silent but captured")

	assert.Equal(t, []string{"silent but captured"}, rec.Messages())
}

func TestFromConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  *configurerStub
		want string
	}{
		{
			name: "bad encoding",
			cfg: &configurerStub{has: true, unmarshal: func(out any) {
				out.(*Config).Encoding = "xml"
			}},
			want: "unknown encoding",
		},
		{
			name: "bad level",
			cfg: &configurerStub{has: true, unmarshal: func(out any) {
				out.(*Config).Level = "loud"
			}},
			want: "unrecognized level",
		},
		{
			name: "unmarshal failure",
			cfg:  &configurerStub{has: true, err: errors.New("broken section")},
			want: "broken section",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := FromConfig(c.cfg)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestConfigInitDefault(t *testing.T) {
	cases := []struct {
		name     string
		conf     Config
		wantErr  bool
		level    string
		encoding string
	}{
		{name: "empty gets defaults", conf: Config{}, level: "debug", encoding: "console"},
		{name: "explicit kept", conf: Config{Level: "error", Encoding: "json", Echo: true}, level: "error", encoding: "json"},
		{name: "bad encoding", conf: Config{Encoding: "xml"}, wantErr: true},
		{name: "bad level", conf: Config{Level: "loud"}, wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.conf.InitDefault()
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.level, c.conf.Level)
			assert.Equal(t, c.encoding, c.conf.Encoding)
		})
	}
}
