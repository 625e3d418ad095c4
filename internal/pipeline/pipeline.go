package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"wordfreq/internal/diag"
	"wordfreq/pkg/contract"
)

// - 单线程核心：一行读完、分词、计数后才读下一行；组件均为同步实现。
// - 取消：每行与每个文件之间检查 ctx。
// - 输出：定稿 → 整形（min_count/top）→ Encoder 经 io.Pipe 流式交给 Writer，这是唯一的额外 goroutine。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader    contract.Reader
	Tokenizer contract.Tokenizer
	Counter   contract.Counter
	Encoder   contract.Encoder
	Writer    contract.Writer
}

// DefaultOutput 为未指定输出名时的工件 ID。
const DefaultOutput contract.ArtifactID = "wordfreq.tsv"

// Settings 运行期配置。
type Settings struct {
	Inputs []string
	// Output: 工件 ID，由 Writer 映射到路径/对象键/行主键。
	Output contract.ArtifactID
	// Top: 只保留前 N 条；0 表示全部。
	Top int
	// MinCount: 丢弃计数低于该值的条目；0 表示全部保留。
	MinCount int64
}

// progressEvery: 每处理多少行向终端汇报一次（终端自身再做 100ms 节流）。
const progressEvery = 1024

// errWriterClosed: Writer 返回后关闭管道读端时使用，用于区分编码器自身的错误。
var errWriterClosed = errors.New("pipeline: writer closed")

// Run 执行完整流水线：Reader → 逐行 Tokenizer → Counter；全部输入结束后
// Counter.Finalize → 整形 → Encoder → Writer。
// 任一阶段出错立即返回（已写出的内容不回滚）。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	if err := sanity(comp, set); err != nil {
		return fmt.Errorf("sanity: %w", err)
	}
	runTimer := logger.StartWithKV("pipeline", "run", "", map[string]string{"inputs": strconv.Itoa(len(set.Inputs))})
	runStart := time.Now()
	defer func() { diag.ObserveDuration("pipeline", "run", time.Since(runStart).Milliseconds()) }()

	if err := count(ctx, comp, set, logger); err != nil {
		return err
	}

	ftimer := logger.Start("counter", "finalize")
	entries, err := comp.Counter.Finalize()
	if err != nil {
		fail(logger, "counter", "finalize failed", "", ftimer.Since(), err)
		return fmt.Errorf("counter finalize: %w", err)
	}
	ftimer.Finish("finalize", int64(len(entries)))
	diag.IncOp("counter", "finish", "success")

	entries = Shape(entries, set.Top, set.MinCount)

	out := set.Output
	if out == "" {
		out = DefaultOutput
	}
	wtimer := logger.StartWith("writer", "write", string(out))
	if err := emit(ctx, comp, out, entries); err != nil {
		where := "writer"
		var ee encodeError
		if errors.As(err, &ee) {
			where = "encoder"
		}
		fail(logger, where, "emit failed", string(out), wtimer.Since(), err)
		return err
	}
	wtimer.Finish("write", int64(len(entries)))
	diag.IncOp("writer", "finish", "success")

	st := comp.Counter.Stats()
	runTimer.FinishKV("run", st.Total, map[string]string{
		"distinct": strconv.Itoa(st.Distinct),
		"lines":    strconv.FormatInt(st.Lines, 10),
		"emitted":  strconv.Itoa(len(entries)),
	})
	return nil
}

// count 遍历全部输入，逐行分词并计数。
func count(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	rtimer := logger.Start("reader", "iterate")
	files := 0
	err := comp.Reader.Iterate(ctx, set.Inputs, func(fid contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		files++
		return countFile(ctx, comp, fid, rc, logger)
	})
	if err != nil {
		fail(logger, "reader", "iterate failed", "", rtimer.Since(), err)
		return fmt.Errorf("reader iterate: %w", err)
	}
	rtimer.Finish("iterate", int64(files))
	diag.IncOp("reader", "finish", "success")
	return nil
}

func countFile(ctx context.Context, comp Components, fid contract.FileID, r io.Reader, logger *diag.Logger) (err error) {
	term := diag.GetTerminal()
	term.FileStart(string(fid))
	fileStart := time.Now()
	timer := logger.StartWith("counter", "observe", string(fid))
	before := comp.Counter.Stats()
	defer func() {
		term.FileFinish(err == nil, time.Since(fileStart))
	}()

	br := bufio.NewReader(r)
	var buf []byte
	var lines int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var rerr error
		buf, rerr = readLine(br, buf)
		if len(buf) > 0 {
			if oerr := comp.Counter.Observe(comp.Tokenizer.Tokenize(buf)); oerr != nil {
				fail(logger, "counter", "observe failed", string(fid), timer.Since(), oerr)
				return fmt.Errorf("counter observe %s: %w", fid, oerr)
			}
			lines++
			if lines%progressEvery == 0 {
				term.FileProgress(lines, comp.Counter.Stats().Total-before.Total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			fail(logger, "reader", "read failed", string(fid), timer.Since(), rerr)
			return fmt.Errorf("read %s: %w", fid, rerr)
		}
	}
	tokens := comp.Counter.Stats().Total - before.Total
	term.FileProgress(lines, tokens)
	timer.FinishKV("observe", tokens, map[string]string{"lines": strconv.FormatInt(lines, 10)})
	diag.IncOp("counter", "file", "success")
	return nil
}

// readLine 读取一行（含结尾 '\n'；末行可无），复用 buf 的底层数组。
func readLine(br *bufio.Reader, buf []byte) ([]byte, error) {
	buf = buf[:0]
	for {
		frag, err := br.ReadSlice('\n')
		buf = append(buf, frag...)
		if err != bufio.ErrBufferFull {
			return buf, err
		}
	}
}

type encodeError struct{ err error }

func (e encodeError) Error() string { return "encoder encode: " + e.err.Error() }
func (e encodeError) Unwrap() error { return e.err }

// emit 将 entries 编码并经管道交给 Writer。
// 编码器自身出错优先于 Writer 错误返回（后者通常只是其后果）。
func emit(ctx context.Context, comp Components, out contract.ArtifactID, entries []contract.Entry) error {
	pr, pw := io.Pipe()
	errc := make(chan error, 1)
	go func() {
		err := comp.Encoder.Encode(pw, entries)
		pw.CloseWithError(err)
		errc <- err
	}()
	werr := comp.Writer.Write(ctx, out, pr)
	pr.CloseWithError(errWriterClosed)
	encErr := <-errc
	if encErr != nil && !errors.Is(encErr, errWriterClosed) {
		return encodeError{err: encErr}
	}
	if werr != nil {
		return fmt.Errorf("writer write: %w", werr)
	}
	return nil
}

// Shape 按 minCount 与 top 截取已排序条目，保持原有顺序。
// entries 须已按计数降序，因此 minCount 过滤等价于截取前缀。
func Shape(entries []contract.Entry, top int, minCount int64) []contract.Entry {
	if minCount > 0 {
		n := 0
		for n < len(entries) && entries[n].Count >= minCount {
			n++
		}
		entries = entries[:n]
	}
	if top > 0 && top < len(entries) {
		entries = entries[:top]
	}
	return entries
}

func fail(logger *diag.Logger, comp, msg, fileID string, since *time.Time, err error) {
	code := diag.Classify(err)
	logger.ErrorWithKV(comp, string(code), msg, since, fileID, map[string]string{"err": err.Error()})
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Tokenizer == nil || c.Counter == nil || c.Encoder == nil || c.Writer == nil {
		return fmt.Errorf("%w: pipeline: missing components", contract.ErrInvalidInput)
	}
	if s.Top < 0 || s.MinCount < 0 {
		return fmt.Errorf("%w: pipeline: top/min_count must be >= 0", contract.ErrInvalidInput)
	}
	return nil
}
