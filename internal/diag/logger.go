package diag

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level 日志级别。
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case Debug:
		return slog.LevelDebug
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel 解析级别名，未知值按 info。
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Logger 为结构化日志器：单行 JSON（slog JSONHandler）写入轮转文件。
// nil *Logger 的全部方法均为 no-op。
type Logger struct {
	sl   *slog.Logger
	sink io.Closer
}

// DefaultLogDir 为默认日志目录。
const DefaultLogDir = "logs"

// NewLogger 以 level 初始化，日志写入 dir/wordfreq-current.log，10MiB 轮转。
func NewLogger(corrID, level, dir string) *Logger {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultLogDir
	}
	sink := NewRotatingFile(dir, 10*1024*1024)
	l := NewLoggerTo(&fallbackWriter{primary: sink}, corrID, level)
	l.sink = sink
	return l
}

// NewLoggerTo 将日志写入任意 io.Writer（测试与嵌入）。
func NewLoggerTo(w io.Writer, corrID, level string) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level).slogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				a.Key = "ts"
				if a.Value.Kind() == slog.KindTime {
					a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
	return &Logger{sl: slog.New(h).With(slog.String("corr_id", corrID))}
}

// Close 关闭底层日志文件。
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	return l.sink.Close()
}

// Event 为标准事件字段。
type Event struct {
	Comp   string
	Stage  string // start|finish|error
	Code   string
	DurMS  int64
	Count  int64
	FileID string
	Msg    string
	KV     map[string]string
}

func (e Event) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, 7)
	out = append(out, slog.String("comp", e.Comp), slog.String("stage", e.Stage))
	if e.Code != "" {
		out = append(out, slog.String("code", e.Code))
	}
	if e.DurMS != 0 {
		out = append(out, slog.Int64("dur_ms", e.DurMS))
	}
	if e.Count != 0 {
		out = append(out, slog.Int64("count", e.Count))
	}
	if e.FileID != "" {
		out = append(out, slog.String("file_id", e.FileID))
	}
	if len(e.KV) > 0 {
		out = append(out, slog.Any("kv", e.KV))
	}
	return out
}

func (l *Logger) log(lv Level, ev Event) {
	if l == nil || l.sl == nil {
		return
	}
	l.sl.LogAttrs(context.Background(), lv.slogLevel(), ev.Msg, ev.attrs()...)
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Msg: msg})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带 file_id 的 start。
func (l *Logger) StartWith(comp, msg, fileID string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", FileID: fileID, Msg: msg})
	return &Timer{l: l, comp: comp, fileID: fileID, t0: time.Now()}
}

// StartWithKV 记录带 file_id 与键值的 start。
func (l *Logger) StartWithKV(comp, msg, fileID string, kv map[string]string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", FileID: fileID, Msg: msg, KV: kv})
	return &Timer{l: l, comp: comp, fileID: fileID, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWithKV(comp, code, msg, durSince, "", nil)
}

// ErrorWith 支持 file_id。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, fileID string) {
	l.ErrorWithKV(comp, code, msg, durSince, fileID, nil)
}

// ErrorWithKV 支持附带键值对。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, fileID string, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg, FileID: fileID, KV: kv})
}

// Warn 记录不中断流程的告警。
func (l *Logger) Warn(comp, msg string, kv map[string]string) {
	l.log(Warn, Event{Comp: comp, Stage: "warn", Msg: msg, KV: kv})
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.log(Info, Event{Comp: comp, Stage: "finish", DurMS: time.Since(start).Milliseconds(), Count: count, Msg: msg})
}

// DebugStart 输出调试级别的 start 事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg, fileID string, kv map[string]string) {
	l.log(Debug, Event{Comp: comp, Stage: "start", FileID: fileID, Msg: msg, KV: kv})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	fileID string
	t0     time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	t.FinishKV(msg, count, nil)
}

// FinishKV 记录带键值的 finish。
func (t *Timer) FinishKV(msg string, count int64, kv map[string]string) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(Info, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, FileID: t.fileID, Msg: msg, KV: kv})
}

// Since 返回计时起点，供 Error 系列计算耗时。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}

// fallbackWriter: 日志文件写失败时退回 stderr。
type fallbackWriter struct {
	primary io.Writer
}

func (w *fallbackWriter) Write(p []byte) (int, error) {
	if n, err := w.primary.Write(p); err == nil {
		return n, nil
	}
	return os.Stderr.Write(p)
}
