package table

import (
	"bytes"
	"fmt"
	"sort"

	"wordfreq/pkg/contract"
)

// Options 为频率表的可选配置。
type Options struct {
	// InitialCapacity: map 预分配容量（不同 token 数的预估）；<=0 使用默认 4096。
	InitialCapacity int `json:"initial_capacity"`
}

type state int

const (
	accumulating state = iota
	finalized
)

// Table 为基于 map 的频率表聚合器。
// 状态：accumulating 接受 Observe；finalized 为终态。
type Table struct {
	counts map[string]int64
	total  int64
	lines  int64
	st     state
	// fold: 复用的小写缓冲，避免每个 token 分配。
	fold []byte
}

var _ contract.Counter = (*Table)(nil)

// New 创建频率表。
func New(opts *Options) *Table {
	n := 4096
	if opts != nil && opts.InitialCapacity > 0 {
		n = opts.InitialCapacity
	}
	return &Table{counts: make(map[string]int64, n)}
}

// Observe 以 ' ' 切分一行已分词的字节，丢弃空片段，ASCII 小写后计数。
func (t *Table) Observe(line []byte) error {
	if t.st == finalized {
		return fmt.Errorf("observe: %w", contract.ErrFinalized)
	}
	t.lines++
	for len(line) > 0 {
		var tok []byte
		if i := bytes.IndexByte(line, ' '); i >= 0 {
			tok, line = line[:i], line[i+1:]
		} else {
			tok, line = line, nil
		}
		if len(tok) == 0 {
			continue
		}
		t.fold = foldASCII(t.fold[:0], tok)
		t.counts[string(t.fold)]++
		t.total++
	}
	return nil
}

// Finalize 返回按计数降序的全部条目；计数相同按 token 字节序升序，保证同输入输出稳定。
func (t *Table) Finalize() ([]contract.Entry, error) {
	if t.st == finalized {
		return nil, fmt.Errorf("finalize: %w", contract.ErrFinalized)
	}
	t.st = finalized
	out := make([]contract.Entry, 0, len(t.counts))
	for tok, n := range t.counts {
		out = append(out, contract.Entry{Token: tok, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	return out, nil
}

// Stats 返回当前统计快照（定稿前后均可调用）。
func (t *Table) Stats() contract.Stats {
	return contract.Stats{Distinct: len(t.counts), Total: t.total, Lines: t.lines}
}

// foldASCII 仅将 'A'..'Z' 转为小写；其余字节（含非 ASCII）原样保留。
// bytes.ToLower 会按 UTF-8 做 Unicode 折叠，这里不能用。
func foldASCII(dst, src []byte) []byte {
	for _, c := range src {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		dst = append(dst, c)
	}
	return dst
}
