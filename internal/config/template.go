package config

import (
	"encoding/json"
	"strings"
)

// DefaultTemplateConfig 返回一个可直接运行的配置模板：
// 输入为 STDIN，结果以 TSV 写到标准输出；各组件选项列出全部键及中性默认值。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Output = "wordfreq.tsv"
	cfg.Top = 0
	cfg.MinCount = 0
	cfg.Options.Reader = json.RawMessage(`{
  "buf_size": 65536,
  "exclude_dir_names": [".git", "node_modules", "vendor"],
  "allow_exts": [],
  "decompress": true
}`)
	cfg.Options.Tokenizer = json.RawMessage(`{
  "cache_size": 4096,
  "max_cached_line_bytes": 512
}`)
	cfg.Options.Counter = json.RawMessage(`{
  "initial_capacity": 4096
}`)
	// 编码器选项不预置：各实现的键互不兼容
	// stdout 无选项；切换到 fs/s3/pg 时替换为对应选项
	cfg.Options.Writer = json.RawMessage(`{}`)
	return cfg
}

// DotEnvTemplate 返回 .env 模板内容（由 --init-config 生成）。
func DotEnvTemplate() string {
	var b strings.Builder
	b.WriteString("# wordfreq .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > 配置文件\n")
	b.WriteString("# 空值表示未设置。\n\n")

	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString(EnvPrefix + "CONFIG_FILE=\n")
	b.WriteString(EnvPrefix + "CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	for _, k := range []string{"INPUTS", "OUTPUT", "TOP", "MIN_COUNT", "LOG_LEVEL", "LOG_DIR"} {
		b.WriteString(EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 组件选择\n")
	for _, k := range []string{"READER", "TOKENIZER", "COUNTER", "ENCODER", "WRITER"} {
		b.WriteString(EnvPrefix + "COMPONENTS_" + k + "=\n")
	}
	b.WriteString("\n# 组件选项（原样 JSON）\n")
	for _, k := range []string{"READER", "TOKENIZER", "COUNTER", "ENCODER", "WRITER"} {
		b.WriteString(EnvPrefix + "OPTIONS_" + k + "_JSON=\n")
	}
	b.WriteString("\n# s3 / pg writer 凭据（选项中留空时读取）\n")
	b.WriteString("AWS_ACCESS_KEY_ID=\n")
	b.WriteString("AWS_SECRET_ACCESS_KEY=\n")
	b.WriteString("DATABASE_URL=\n")
	return b.String()
}
