package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"wordfreq/pkg/contract"
)

// Tokenize 只做分词不计数：每个输入行输出一行，token 之间以单个空格分隔，
// 去掉首尾与重复空格。用于检查规则级联的效果。
func Tokenize(ctx context.Context, r contract.Reader, t contract.Tokenizer, inputs []string, w io.Writer) error {
	if r == nil || t == nil || w == nil {
		return fmt.Errorf("%w: tokenize: missing components", contract.ErrInvalidInput)
	}
	bw := bufio.NewWriter(w)
	err := r.Iterate(ctx, inputs, func(fid contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		br := bufio.NewReader(rc)
		var line, out []byte
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rerr error
			line, rerr = readLine(br, line)
			if len(line) > 0 {
				out = appendTokens(out[:0], t.Tokenize(line))
				out = append(out, '\n')
				if _, err := bw.Write(out); err != nil {
					return err
				}
			}
			if rerr == io.EOF {
				return nil
			}
			if rerr != nil {
				return fmt.Errorf("read %s: %w", fid, rerr)
			}
		}
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// appendTokens 把以 ' ' 分隔的非空片段用单个空格连接后追加到 dst。
func appendTokens(dst, tokenized []byte) []byte {
	first := true
	start := -1
	for i := 0; i <= len(tokenized); i++ {
		if i < len(tokenized) && tokenized[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if !first {
				dst = append(dst, ' ')
			}
			dst = append(dst, tokenized[start:i]...)
			first = false
			start = -1
		}
	}
	return dst
}
