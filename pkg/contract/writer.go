package contract

import (
	"context"
	"io"
)

// ArtifactID: 输出工件标识（例如 "wordfreq.tsv"）。
// 与 FileID 复用同一表示，由 Writer 映射到各自介质的路径/键。
type ArtifactID = FileID

// Writer: 将编码后的频率表以流式方式持久化到目标介质（标准输出/文件系统/对象存储/数据库）。
// 约束：
//  1. 同一 ArtifactID 单写者；
//  2. 按字节透传，不读取/修改业务内容；
//  3. ctx 取消/超时需尽快返回；
//  4. 错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, r io.Reader) error
}
