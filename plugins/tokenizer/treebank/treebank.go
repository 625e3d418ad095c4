package treebank

import (
	"bytes"
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"wordfreq/pkg/contract"
)

// Options 为 Treebank Tokenizer 的可选配置。
type Options struct {
	// CacheSize: 行级 LRU 缓存条目数；0 表示关闭缓存。
	// 分词是纯函数，重复行（空行、模板化页眉页脚等）可直接复用结果。
	CacheSize int `json:"cache_size"`
	// MaxCachedLineBytes: 超过该字节数的行不进入缓存；<=0 使用默认 512。
	MaxCachedLineBytes int `json:"max_cached_line_bytes"`
}

type compiled struct {
	re   *regexp.Regexp
	repl []byte
}

// Tokenizer 依次应用编译后的规则级联。
// 规则表在构造后只读；缓存仅保存规则输出的副本，不影响结果。
type Tokenizer struct {
	rules     []compiled
	cache     *lru.Cache[string, []byte]
	maxCached int
}

var _ contract.Tokenizer = (*Tokenizer)(nil)

// New 使用默认规则级联创建 Tokenizer。
func New(opts *Options) (*Tokenizer, error) {
	return NewWithRules(cascade, opts)
}

// NewWithRules 编译给定规则；任一规则编译失败即返回 ErrRuleInvalid，不产生部分可用的实例。
func NewWithRules(rules []Rule, opts *Options) (*Tokenizer, error) {
	cs := make([]compiled, 0, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: #%d %q: %v", contract.ErrRuleInvalid, i+1, r.Pattern, err)
		}
		cs = append(cs, compiled{re: re, repl: []byte(r.Replace)})
	}
	t := &Tokenizer{rules: cs, maxCached: 512}
	if opts == nil {
		return t, nil
	}
	if opts.CacheSize < 0 {
		return nil, fmt.Errorf("%w: cache_size must be >= 0", contract.ErrInvalidInput)
	}
	if opts.MaxCachedLineBytes > 0 {
		t.maxCached = opts.MaxCachedLineBytes
	}
	if opts.CacheSize > 0 {
		c, err := lru.New[string, []byte](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("tokenizer cache: %w", err)
		}
		t.cache = c
	}
	return t, nil
}

// Tokenize 对整行依序执行每条规则一次（不迭代至不动点）。
func (t *Tokenizer) Tokenize(line []byte) []byte {
	if t.cache == nil || len(line) > t.maxCached {
		return t.apply(line)
	}
	key := string(line)
	if out, ok := t.cache.Get(key); ok {
		return bytes.Clone(out)
	}
	out := t.apply(line)
	t.cache.Add(key, bytes.Clone(out))
	return out
}

// Len 返回规则条数。
func (t *Tokenizer) Len() int { return len(t.rules) }

func (t *Tokenizer) apply(line []byte) []byte {
	buf := line
	for _, r := range t.rules {
		buf = r.re.ReplaceAll(buf, r.repl)
	}
	// 无规则时也不返回调用方的底层数组
	if len(t.rules) == 0 {
		return bytes.Clone(line)
	}
	return buf
}
