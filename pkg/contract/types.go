package contract

// FileID: 逻辑输入源 ID（通常为路径，需规范化，跨平台一致；STDIN 固定为 "stdin"）。
type FileID string

// Entry: 频率表中的一行（已大小写折叠的 token 及其计数）。
// Token 以 string 承载任意字节，不要求合法 UTF-8。
type Entry struct {
	Token string
	Count int64
}

// Stats: 聚合器的只读统计快照。
type Stats struct {
	// Distinct: 不同 token 数。
	Distinct int
	// Total: 已计数的 token 总数（等于所有计数之和）。
	Total int64
	// Lines: 已观察的行数。
	Lines int64
}
