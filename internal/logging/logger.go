// Package logging is a small leveled logger. Text output keeps the
// "[TAG] message" shape used across the server; JSON output is one object per
// line for log shippers.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseLevel maps a config string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// sink is shared by a logger and all of its children.
type sink struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// Logger values are immutable; With* methods return children that share the
// parent's output.
type Logger struct {
	sink      *sink
	level     Level
	format    Format
	component string
	fields    map[string]any
}

func New(out io.Writer, level Level, format Format) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		sink:   &sink{out: out, now: time.Now},
		level:  level,
		format: format,
	}
}

func (l *Logger) clone() *Logger {
	c := *l
	c.fields = make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return &c
}

// Component tags every line with name, rendered as "[NAME]" in text mode.
func (l *Logger) Component(name string) *Logger {
	c := l.clone()
	c.component = strings.ToUpper(name)
	return c
}

func (l *Logger) WithField(key string, value any) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	ts := l.sink.now().UTC().Format(time.RFC3339)

	var line string
	if l.format == FormatJSON {
		line = l.jsonLine(ts, level, msg)
	} else {
		line = l.textLine(ts, level, msg)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	fmt.Fprintln(l.sink.out, line)
}

func (l *Logger) textLine(ts string, level Level, msg string) string {
	var b strings.Builder
	b.WriteString(ts)
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(level.String()))
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}
	return b.String()
}

func (l *Logger) jsonLine(ts string, level Level, msg string) string {
	entry := struct {
		Timestamp string         `json:"timestamp"`
		Level     string         `json:"level"`
		Component string         `json:"component,omitempty"`
		Message   string         `json:"message"`
		Fields    map[string]any `json:"fields,omitempty"`
	}{ts, level.String(), l.component, msg, l.fields}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"error","message":"log encode: %s"}`, err)
	}
	return string(data)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(os.Stdout, LevelInfo, FormatText)
)

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Component is shorthand for Default().Component(name).
func Component(name string) *Logger {
	return Default().Component(name)
}

type ctxKey struct{}

func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or the default one.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
			return l
		}
	}
	return Default()
}
