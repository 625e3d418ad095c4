package tsv

import (
	"bufio"
	"io"
	"strconv"

	"wordfreq/pkg/contract"
)

// Options 为 TSV 编码器的可选配置。
type Options struct {
	// Header: 是否先输出一行 "token\tcount" 表头。默认 false（与逐行记录格式严格一致）。
	Header bool `json:"header"`
}

// Encoder 将每个条目输出为：token 原始字节 + '\t' + 十进制计数 + '\n'。
// token 按字节透传，不转义、不校验编码。
type Encoder struct {
	header bool
}

var _ contract.Encoder = (*Encoder)(nil)

// New 创建 TSV 编码器。
func New(opts *Options) *Encoder {
	e := &Encoder{}
	if opts != nil {
		e.header = opts.Header
	}
	return e
}

// Encode 逐条写出；任一写错误立即返回。
func (e *Encoder) Encode(w io.Writer, entries []contract.Entry) error {
	bw := bufio.NewWriter(w)
	if e.header {
		if _, err := bw.WriteString("token\tcount\n"); err != nil {
			return err
		}
	}
	var num []byte
	for _, en := range entries {
		if _, err := bw.WriteString(en.Token); err != nil {
			return err
		}
		num = append(num[:0], '\t')
		num = strconv.AppendInt(num, en.Count, 10)
		num = append(num, '\n')
		if _, err := bw.Write(num); err != nil {
			return err
		}
	}
	return bw.Flush()
}
