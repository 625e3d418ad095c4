package diag

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"

	"wordfreq/pkg/contract"
)

// Code 是最小错误分类代码，仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeNetwork   Code = "network"
	CodeInvariant Code = "invariant"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
)

// Classify 将错误归为最小分类，只依赖哨兵错误与标准库错误类型。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrInvalidInput) ||
		errors.Is(err, contract.ErrPathInvalid) ||
		errors.Is(err, contract.ErrRuleInvalid) ||
		errors.Is(err, contract.ErrFinalized) {
		return CodeInvariant
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeNetwork
	}
	var perr *fs.PathError
	if errors.As(err, &perr) || errors.Is(err, os.ErrClosed) {
		return CodeIO
	}
	return CodeUnknown
}
