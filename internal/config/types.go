package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// 键使用 snake_case；未知字段在解析期失败。
type Config struct {
	Inputs []string `json:"inputs"`
	// Output: 输出工件 ID（文件名/对象键/行主键）；空则按编码器取 wordfreq.tsv 或 wordfreq.jsonl。
	Output string `json:"output"`
	// Top: 只输出前 N 条；0 表示全部。
	Top int `json:"top"`
	// MinCount: 只输出计数不低于该值的条目；0 表示全部。
	MinCount int64   `json:"min_count"`
	Logging  Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志等级与目录；文件名与轮转策略固定。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader    string `json:"reader"`
	Tokenizer string `json:"tokenizer"`
	Counter   string `json:"counter"`
	Encoder   string `json:"encoder"`
	Writer    string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader    json.RawMessage `json:"reader,omitempty"`
	Tokenizer json.RawMessage `json:"tokenizer,omitempty"`
	Counter   json.RawMessage `json:"counter,omitempty"`
	Encoder   json.RawMessage `json:"encoder,omitempty"`
	Writer    json.RawMessage `json:"writer,omitempty"`
}
