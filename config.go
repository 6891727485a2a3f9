package logrecorder

import (
	"os"

	"github.com/roadrunner-server/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the logrecorder plugin configuration.
type Config struct {
	// Level is the minimum level echoed to stdout, one of zap's level names.
	// Capture thresholds are declared per recorder and are not affected by it.
	Level string `mapstructure:"level"`
	// Encoding selects the echo encoder, console or json.
	Encoding string `mapstructure:"encoding"`
	// Echo enables echoing emitted entries to stdout.
	Echo bool `mapstructure:"echo"`

	level zap.AtomicLevel
}

// InitDefault fills in defaults and validates the section.
func (c *Config) InitDefault() error {
	const op = errors.Op("logrecorder_config_init_default")

	if c.Level == "" {
		c.Level = "debug"
	}
	if c.Encoding == "" {
		c.Encoding = "console"
	}

	switch c.Encoding {
	case "console", "json":
	default:
		return errors.E(op, errors.Errorf("unknown encoding: %s, should be either console or json", c.Encoding))
	}

	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return errors.E(op, err)
	}
	c.level = level

	return nil
}

// echoCore builds the echo core for the configured encoding and level.
func (c *Config) echoCore() zapcore.Core {
	var enc zapcore.Encoder
	switch c.Encoding {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), c.level)
}
