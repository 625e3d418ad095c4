package contract

import (
	"context"
	"io"
)

// Reader: 输入源抽象（文件/目录/STDIN）。
// 约束：
// 1) 流式读取，按输入源维度回调；
// 2) FileID 稳定且去平台差异化；
// 3) 只提供（必要时已解压的）原始字节流，不做分行/分词；
// 4) 不在内部起并发。
type Reader interface {
	Iterate(ctx context.Context, roots []string, yield func(fileID FileID, r io.ReadCloser) error) error
}
