package contract

import "io"

// Encoder: 将定稿后的频率表渲染为字节流。
// 约束：按传入顺序逐条输出，不重排、不过滤；写错误直接上抛。
type Encoder interface {
	Encode(w io.Writer, entries []Entry) error
}
