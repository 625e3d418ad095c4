package contract

// Counter: 频率表聚合器（两态：累积中 → 已定稿）。
// 约束：
//  1. Observe 以 ' ' 切分已分词的行，丢弃空片段，ASCII 小写后计数；
//  2. Finalize 仅可调用一次，返回按计数降序的全部条目；
//  3. 定稿后再调用 Observe/Finalize 返回 ErrFinalized；
//  4. 单一所有者，不要求并发安全。
type Counter interface {
	Observe(line []byte) error
	Finalize() ([]Entry, error)
	Stats() Stats
}
