package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const logBase = "wordfreq"

// RotatingFile 将日志写入 dir/wordfreq-current.log，超过 maxBytes 时
// 重命名为 wordfreq-<UTC 时间戳>.log 并重新创建 current。
type RotatingFile struct {
	dir      string
	maxBytes int64

	mu      sync.Mutex
	f       *os.File
	curSize int64
}

// NewRotatingFile 创建轮转文件；文件在首次写入时才打开。
func NewRotatingFile(dir string, maxBytes int64) *RotatingFile {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &RotatingFile{dir: dir, maxBytes: maxBytes}
}

// Write 写入一条完整记录（slog 每条记录一次 Write，末尾已含换行）。
func (w *RotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureOpen(); err != nil {
		return 0, err
	}
	if w.curSize > 0 && w.curSize+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.f.Write(p)
	w.curSize += int64(n)
	return n, err
}

// CurrentPath 返回当前日志文件路径。
func (w *RotatingFile) CurrentPath() string {
	return filepath.Join(w.dir, logBase+"-current.log")
}

func (w *RotatingFile) ensureOpen() error {
	if w.f != nil {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.CurrentPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.curSize = 0
	if st, err := f.Stat(); err == nil {
		w.curSize = st.Size()
	}
	return nil
}

func (w *RotatingFile) rotate() error {
	oldPath := w.f.Name()
	_ = w.f.Close()
	w.f = nil
	// 纳秒时间戳，避免同秒冲突覆盖
	ts := time.Now().UTC().Format("20060102-150405.000000000")
	rotated := filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", logBase, ts))
	if err := os.Rename(oldPath, rotated); err != nil {
		return fmt.Errorf("rename rotated file: %w", err)
	}
	return w.ensureOpen()
}

// Close 关闭当前文件句柄。
func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
