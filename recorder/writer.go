package recorder

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WriterSource feeds newline-delimited JSON log output into the registry, so
// traffic from loggers outside the zap tree (zerolog, slog, zap's own JSON
// encoder) is captured by the same recorders. It implements io.WriteCloser
// and is safe for concurrent use.
//
// Causes reconstructed from the error key are plain errors carrying the
// original text; type identity does not survive the JSON boundary.
type WriterSource struct {
	reg    *Registry
	source string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewWriterSource returns a writer publishing each complete line it receives
// as a log event from the named source. The name participates in
// hierarchical matching like any logger name; a logger key decoded from the
// line overrides it.
func NewWriterSource(reg *Registry, source string) *WriterSource {
	return &WriterSource{reg: reg, source: source}
}

// wireLine covers the default key sets of zerolog, zap's production encoder
// and slog's JSONHandler.
type wireLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Error   string `json:"error"`
	Logger  string `json:"logger"`
}

// Write buffers p and publishes every complete line. It never fails; the
// error return exists to satisfy io.Writer.
func (w *WriterSource) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// partial line, keep it for the next write
			w.buf.WriteString(line)
			break
		}
		w.publish(strings.TrimSpace(line))
	}

	return len(p), nil
}

// Close publishes a trailing unterminated line, if any. The writer stays
// usable afterwards.
func (w *WriterSource) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() != 0 {
		w.publish(strings.TrimSpace(w.buf.String()))
		w.buf.Reset()
	}
	return nil
}

// publish decodes one line and hands it to the delivery path. Lines that are
// not JSON objects still become records, carrying the raw text at info
// level, so no traffic is silently swallowed.
func (w *WriterSource) publish(line string) {
	if line == "" {
		return
	}

	msg := line
	level := zapcore.InfoLevel
	source := w.source
	var fields []zapcore.Field

	var decoded wireLine
	if err := json.Unmarshal([]byte(line), &decoded); err == nil {
		switch {
		case decoded.Message != "":
			msg = decoded.Message
		default:
			msg = decoded.Msg
		}
		level = parseWireLevel(decoded.Level)
		if decoded.Logger != "" {
			source = decoded.Logger
		}
		if decoded.Error != "" {
			fields = append(fields, zap.Error(errors.New(decoded.Error)))
		}
	}

	w.reg.deliver(zapcore.Entry{
		Time:       w.reg.clock.Now(),
		Level:      level,
		LoggerName: source,
		Message:    msg,
	}, fields)
}

// parseWireLevel maps the level vocabulary of the supported encoders onto
// zap levels. Unknown strings fall back to info rather than dropping the
// line.
func parseWireLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "", "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
