package config

import (
	"fmt"
	"strings"

	"wordfreq/internal/pipeline"
	"wordfreq/pkg/contract"
	"wordfreq/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return invalid("inputs empty")
	}
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		switch strings.TrimSpace(r) {
		case "":
			return invalid("input path cannot be empty")
		case "-":
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return invalid("'-' cannot be mixed with other roots")
	}
	if cfg.Top < 0 {
		return invalid("top must be >= 0")
	}
	if cfg.MinCount < 0 {
		return invalid("min_count must be >= 0")
	}
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return invalid(fmt.Sprintf("reader %q not registered", name))
	}
	if name := effName(cfg.Components.Tokenizer, d.Tokenizer); registry.Tokenizer[name] == nil {
		return invalid(fmt.Sprintf("tokenizer %q not registered", name))
	}
	if name := effName(cfg.Components.Counter, d.Counter); registry.Counter[name] == nil {
		return invalid(fmt.Sprintf("counter %q not registered", name))
	}
	if name := effName(cfg.Components.Encoder, d.Encoder); registry.Encoder[name] == nil {
		return invalid(fmt.Sprintf("encoder %q not registered (have %v)", name, registry.Names(registry.Encoder)))
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return invalid(fmt.Sprintf("writer %q not registered (have %v)", name, registry.Names(registry.Writer)))
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("config: %w: %s", contract.ErrInvalidInput, msg)
}

// Assemble 校验并构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
// 分词规则编译失败等构造期错误在此返回。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	d := Defaults().Components
	en := effName(cfg.Components.Encoder, d.Encoder)

	var comp pipeline.Components
	var err error
	if comp.Reader, err = registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("reader: %w", err)
	}
	if comp.Tokenizer, err = registry.Tokenizer[effName(cfg.Components.Tokenizer, d.Tokenizer)](cfg.Options.Tokenizer); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("tokenizer: %w", err)
	}
	if comp.Counter, err = registry.Counter[effName(cfg.Components.Counter, d.Counter)](cfg.Options.Counter); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("counter: %w", err)
	}
	if comp.Encoder, err = registry.Encoder[en](cfg.Options.Encoder); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("encoder: %w", err)
	}
	if comp.Writer, err = registry.Writer[effName(cfg.Components.Writer, d.Writer)](cfg.Options.Writer); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("writer: %w", err)
	}

	set := pipeline.Settings{
		Inputs:   cloneStrings(cfg.Inputs),
		Output:   contract.ArtifactID(OutputName(cfg)),
		Top:      cfg.Top,
		MinCount: cfg.MinCount,
	}
	return comp, set, nil
}

// OutputName 返回有效的输出工件名：显式 output 优先，否则按编码器取默认扩展名。
func OutputName(cfg Config) string {
	if s := strings.TrimSpace(cfg.Output); s != "" {
		return s
	}
	if effName(cfg.Components.Encoder, Defaults().Components.Encoder) == "jsonl" {
		return "wordfreq.jsonl"
	}
	return string(pipeline.DefaultOutput)
}

func effName(got, def string) string {
	if s := strings.TrimSpace(got); s != "" {
		return s
	}
	return def
}
