package jsonl

import (
	"bufio"
	"encoding/json"
	"io"

	"wordfreq/pkg/contract"
)

// Encoder 每个条目输出一行 JSON：{"token":"...","count":N}。
// 注意：非法 UTF-8 字节会被 encoding/json 替换为 U+FFFD；需要逐字节保真时使用 tsv。
type Encoder struct{}

var _ contract.Encoder = (*Encoder)(nil)

// New 创建 JSONL 编码器。
func New() *Encoder { return &Encoder{} }

type row struct {
	Token string `json:"token"`
	Count int64  `json:"count"`
}

// Encode 逐条写出；任一写错误立即返回。
func (e *Encoder) Encode(w io.Writer, entries []contract.Entry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, en := range entries {
		if err := enc.Encode(row{Token: en.Token, Count: en.Count}); err != nil {
			return err
		}
	}
	return bw.Flush()
}
