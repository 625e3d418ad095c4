package contract

import "errors"

// 最小错误分类（用于上层策略判定与日志分类）。
var (
	// ErrInvalidInput: 调用参数或配置不合法。
	ErrInvalidInput = errors.New("invalid input")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
	// ErrRuleInvalid: 分词规则无法编译（属程序缺陷，启动期致命）。
	ErrRuleInvalid = errors.New("rule invalid")
	// ErrFinalized: 聚合器已定稿，不再接受 Observe/Finalize。
	ErrFinalized = errors.New("counter finalized")
)
