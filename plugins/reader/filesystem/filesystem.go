package filesystem

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"wordfreq/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
	// ExcludeDirNames: 在扫描目录时跳过这些目录名（基名完全匹配，忽略大小写）。
	// 仅影响目录递归，不影响单文件 root。
	ExcludeDirNames []string `json:"exclude_dir_names"`
	// AllowExts: 目录递归时仅接收这些逻辑扩展名（如 ".txt"；压缩后缀不计入）。
	// 为空表示全部接收；显式给出的单文件 root 不受限制。
	AllowExts []string `json:"allow_exts"`
	// Decompress: 是否按 .gz/.zst 后缀透明解压。默认 true。
	Decompress *bool `json:"decompress"`
}

// FileSystem 实现基于文件系统与 STDIN 的 Reader。
type FileSystem struct {
	bufSize int
	// 以小写形式保存，比较时按小写基名匹配。
	excludeDir map[string]struct{}
	allowExt   map[string]struct{}
	decompress bool
}

var _ contract.Reader = (*FileSystem)(nil)

// New 创建 FileSystem Reader。
func New(opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	r := &FileSystem{
		bufSize:    defaultBuf,
		excludeDir: make(map[string]struct{}),
		allowExt:   make(map[string]struct{}),
		decompress: true,
	}
	if opts == nil {
		return r
	}
	if opts.BufSize > 0 {
		r.bufSize = opts.BufSize
	}
	for _, name := range opts.ExcludeDirNames {
		if name == "" {
			continue
		}
		r.excludeDir[strings.ToLower(name)] = struct{}{}
	}
	for _, ext := range opts.AllowExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.allowExt[ext] = struct{}{}
	}
	if opts.Decompress != nil {
		r.decompress = *opts.Decompress
	}
	return r
}

// Iterate 遍历 roots，按稳定顺序对每个常规文件调用 yield。
// roots 为空或仅包含 "-" 时读取 STDIN，FileID 为 "stdin"。
// 每个流由 yield 负责关闭；yield 返回错误时由 Reader 关闭并原样返回。
func (r *FileSystem) Iterate(ctx context.Context, roots []string, yield func(fileID contract.FileID, rc io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(roots) == 0 || (len(roots) == 1 && roots[0] == "-") {
		return yield(contract.FileID("stdin"), newBufferedCloser(io.NopCloser(os.Stdin), r.bufSize))
	}
	for _, s := range roots {
		if s == "-" {
			return fmt.Errorf("%w: stdin '-' cannot be mixed with other roots", contract.ErrInvalidInput)
		}
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: empty root", contract.ErrPathInvalid)
		}
	}
	for _, root := range roots {
		if err := r.iterateOne(ctx, root, yield); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileSystem) iterateOne(ctx context.Context, root string, yield func(contract.FileID, io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Lstat(root)
	if err != nil {
		return err
	}
	// 仅跟随到常规文件；目录符号链接不跟随（忽略）
	if info.Mode()&os.ModeSymlink != 0 {
		t, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !t.Mode().IsRegular() {
			return nil
		}
		return r.emit(root, yield)
	}
	if info.IsDir() {
		return r.walkDir(ctx, root, yield)
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return r.emit(root, yield)
}

func (r *FileSystem) walkDir(ctx context.Context, dir string, yield func(contract.FileID, io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	// 稳定顺序：字典序
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	// 先目录，再文件
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.IsDir() {
			continue
		}
		if _, skip := r.excludeDir[strings.ToLower(e.Name())]; skip {
			continue
		}
		if err := r.walkDir(ctx, filepath.Join(dir, e.Name()), yield); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			t, err := os.Stat(p)
			if err != nil {
				return err
			}
			if !t.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		if !r.allowed(p) {
			continue
		}
		if err := r.emit(p, yield); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileSystem) allowed(p string) bool {
	if len(r.allowExt) == 0 {
		return true
	}
	_, ok := r.allowExt[contract.LogicalExt(contract.NormalizeFileID(p))]
	return ok
}

// emit 打开文件，按后缀套上解压层后交给 yield。
func (r *FileSystem) emit(p string, yield func(contract.FileID, io.ReadCloser) error) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	rc, err := r.wrap(p, f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("open %s: %w", p, err)
	}
	if err := yield(contract.NormalizeFileID(p), rc); err != nil {
		_ = rc.Close()
		return err
	}
	return nil
}

func (r *FileSystem) wrap(p string, f *os.File) (io.ReadCloser, error) {
	if !r.decompress {
		return newBufferedCloser(f, r.bufSize), nil
	}
	br := bufio.NewReaderSize(f, r.bufSize)
	switch strings.ToLower(filepath.Ext(p)) {
	case ".gz":
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &stackCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &stackCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, f.Close}}, nil
	default:
		return &bufferedCloser{Reader: br, c: f}, nil
	}
}

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

func (b *bufferedCloser) Close() error { return b.c.Close() }

// stackCloser 依次关闭解压层与文件，返回第一个错误。
type stackCloser struct {
	io.Reader
	closers []func() error
}

func (s *stackCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
