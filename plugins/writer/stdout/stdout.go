package stdout

import (
	"bufio"
	"context"
	"io"
	"os"

	"wordfreq/pkg/contract"
)

// Stdout 将编码后的频率表原样写到标准输出；ArtifactID 仅用于日志，不参与写入。
type Stdout struct {
	out io.Writer
}

var _ contract.Writer = (*Stdout)(nil)

// New 创建写标准输出的 Writer。
func New() *Stdout { return &Stdout{out: os.Stdout} }

// NewTo 写到任意 io.Writer（测试与嵌入场景）。
func NewTo(w io.Writer) *Stdout { return &Stdout{out: w} }

func (s *Stdout) Write(ctx context.Context, _ contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(s.out, 64*1024)
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, err := bw.Write(buf[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			return bw.Flush()
		}
		if rerr != nil {
			return rerr
		}
	}
}
