package config

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"wordfreq/pkg/contract"
	"wordfreq/pkg/registry"
)

// 解析完整 JSON 配置
func TestLoadJSON(t *testing.T) {
	cfg, err := LoadJSON("../../testdata/config/basic.json", nil)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.Output != "corpus.tsv" || cfg.Top != 100 || cfg.MinCount != 2 {
		t.Fatalf("标量字段映射错误: %+v", cfg)
	}
	if len(cfg.Inputs) != 1 || cfg.Components.Writer != "fs" || cfg.Logging.Level != "debug" {
		t.Fatalf("字段映射错误: %+v", cfg)
	}
	cfg = Merge(Defaults(), cfg)
	if err := Validate(cfg); err != nil {
		t.Fatalf("校验失败: %v", err)
	}
}

// YAML 与 JSON 走同一严格解码；未出现的数值键保持“未设置”
func TestLoadYAML(t *testing.T) {
	cfg, err := LoadFile("../../testdata/config/basic.yaml")
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.Top != 10 || cfg.MinCount != -1 {
		t.Fatalf("top/min_count 错误: %d %d", cfg.Top, cfg.MinCount)
	}
	if cfg.Components.Encoder != "jsonl" || cfg.Components.Reader != "" {
		t.Fatalf("组件名错误: %+v", cfg.Components)
	}
	var w struct {
		Endpoint string `json:"endpoint"`
		UseSSL   bool   `json:"use_ssl"`
	}
	if err := json.Unmarshal(cfg.Options.Writer, &w); err != nil || w.Endpoint != "localhost:9000" {
		t.Fatalf("writer options 转换错误: %v %s", err, cfg.Options.Writer)
	}
	merged := Merge(Defaults(), cfg)
	if merged.MinCount != 0 || merged.Components.Reader != "fs" || merged.Logging.Level != "warn" {
		t.Fatalf("合并结果错误: %+v", merged)
	}
}

func TestLoadYAMLUnknown(t *testing.T) {
	if _, err := LoadYAML("", []byte("inputs: [a]\nbogus: 1\n")); err == nil {
		t.Fatalf("未知字段应报错")
	}
	if _, err := LoadYAML("", []byte("inputs: [a\n")); err == nil {
		t.Fatalf("非法 YAML 应报错")
	}
}

// 含非法字段
func TestLoadJSONUnknown(t *testing.T) {
	if _, err := LoadJSON("", []byte(`{"unknown":1}`)); err == nil {
		t.Fatalf("应当返回错误")
	}
	if _, err := LoadJSON("", nil); err == nil {
		t.Fatalf("无来源应报错")
	}
}

func TestFindDefault(t *testing.T) {
	dir := t.TempDir()
	if got := FindDefault(dir); got != "" {
		t.Fatalf("空目录应无默认配置: %s", got)
	}
	if err := writeFile(filepath.Join(dir, "wordfreq.yml"), "top: 1\n"); err != nil {
		t.Fatal(err)
	}
	if got := FindDefault(dir); filepath.Base(got) != "wordfreq.yml" {
		t.Fatalf("应找到 wordfreq.yml: %s", got)
	}
	if err := writeFile(filepath.Join(dir, "wordfreq.json"), "{}"); err != nil {
		t.Fatal(err)
	}
	if got := FindDefault(dir); filepath.Base(got) != "wordfreq.json" {
		t.Fatalf("json 应优先: %s", got)
	}
}

// ENV 覆盖部分字段
func TestEnvOverlay(t *testing.T) {
	env := []string{
		"WORDFREQ_INPUTS=a, b",
		"WORDFREQ_TOP=0",
		"WORDFREQ_COMPONENTS_ENCODER=jsonl",
		"WORDFREQ_OPTIONS_WRITER_JSON={\"output_dir\":\"out\"}",
		"WORDFREQ_LOG_LEVEL=",
		"OTHER_TOP=5",
	}
	over, err := EnvOverlay(env)
	if err != nil {
		t.Fatalf("EnvOverlay 错误: %v", err)
	}
	if len(over.Inputs) != 2 || over.Inputs[1] != "b" || over.Top != 0 || over.MinCount != -1 {
		t.Fatalf("覆盖结果不正确: %+v", over)
	}
	base := Defaults()
	base.Top = 50
	base.Logging.Level = "debug"
	got := Merge(base, over)
	if got.Top != 0 || got.Components.Encoder != "jsonl" || got.Logging.Level != "debug" {
		t.Fatalf("合并错误: %+v", got)
	}
	if string(got.Options.Writer) != `{"output_dir":"out"}` {
		t.Fatalf("options 覆盖错误: %s", got.Options.Writer)
	}
	for _, kv := range []string{"WORDFREQ_TOP=x", "WORDFREQ_TOP=-2", "WORDFREQ_MIN_COUNT=-1"} {
		if _, err := EnvOverlay([]string{kv}); err == nil {
			t.Fatalf("%s 应报错", kv)
		}
	}
}

func TestSplitCommaAtoi(t *testing.T) {
	parts := splitComma("a, b , ,c")
	if len(parts) != 3 || parts[1] != "b" {
		t.Fatalf("splitComma 结果错误: %v", parts)
	}
	if v, err := atoi(" 10 "); err != nil || v != 10 {
		t.Fatalf("atoi 失败: %v %d", err, v)
	}
}

func TestDefaultsClone(t *testing.T) {
	d := Defaults()
	if d.Components.Tokenizer != "treebank" || d.Components.Writer != "stdout" || d.Inputs[0] != "-" {
		t.Fatalf("默认值错误: %+v", d)
	}
	src := []byte("abc")
	dst := cloneRaw(src)
	src[0] = 'x'
	if string(dst) != "abc" {
		t.Fatalf("cloneRaw 未复制")
	}
}

func TestValidateErrors(t *testing.T) {
	mut := map[string]func(*Config){
		"empty inputs":  func(c *Config) { c.Inputs = nil },
		"blank input":   func(c *Config) { c.Inputs = []string{" "} },
		"dash mixed":    func(c *Config) { c.Inputs = []string{"-", "a"} },
		"negative top":  func(c *Config) { c.Top = -1 },
		"negative min":  func(c *Config) { c.MinCount = -3 },
		"bad encoder":   func(c *Config) { c.Components.Encoder = "csv" },
		"bad writer":    func(c *Config) { c.Components.Writer = "kafka" },
		"bad tokenizer": func(c *Config) { c.Components.Tokenizer = "unicode" },
	}
	for name, m := range mut {
		cfg := DefaultTemplateConfig()
		m(&cfg)
		if err := Validate(cfg); !errors.Is(err, contract.ErrInvalidInput) {
			t.Fatalf("%s: 应返回 ErrInvalidInput, got %v", name, err)
		}
	}
	if err := Validate(DefaultTemplateConfig()); err != nil {
		t.Fatalf("模板应通过校验: %v", err)
	}
}

// 模板中的每个组件选项都能被对应工厂严格解析
func TestAssembleTemplate(t *testing.T) {
	comp, set, err := Assemble(DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("装配失败: %v", err)
	}
	if comp.Reader == nil || comp.Tokenizer == nil || comp.Counter == nil || comp.Encoder == nil || comp.Writer == nil {
		t.Fatalf("组件缺失: %+v", comp)
	}
	if set.Output != "wordfreq.tsv" || len(set.Inputs) != 1 {
		t.Fatalf("settings 错误: %+v", set)
	}
}

// 模板切换到任一已注册编码器后仍可装配
func TestAssembleTemplateEncoderSwitch(t *testing.T) {
	for _, name := range registry.Names(registry.Encoder) {
		over, err := EnvOverlay([]string{"WORDFREQ_COMPONENTS_ENCODER=" + name})
		if err != nil {
			t.Fatalf("EnvOverlay: %v", err)
		}
		cfg := Merge(DefaultTemplateConfig(), over)
		if _, _, err := Assemble(cfg); err != nil {
			t.Fatalf("encoder=%s 装配失败: %v", name, err)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	cfg := DefaultTemplateConfig()
	cfg.Options.Tokenizer = json.RawMessage(`{"cache_size":-1}`)
	if _, _, err := Assemble(cfg); !errors.Is(err, contract.ErrInvalidInput) {
		t.Fatalf("负 cache_size 应报错, got %v", err)
	}
	cfg = DefaultTemplateConfig()
	cfg.Options.Reader = json.RawMessage(`{"nope":true}`)
	if _, _, err := Assemble(cfg); err == nil {
		t.Fatalf("未知选项应报错")
	}
}

func TestOutputName(t *testing.T) {
	cfg := Defaults()
	if OutputName(cfg) != "wordfreq.tsv" {
		t.Fatalf("默认输出名错误")
	}
	cfg.Components.Encoder = "jsonl"
	if OutputName(cfg) != "wordfreq.jsonl" {
		t.Fatalf("jsonl 输出名错误")
	}
	cfg.Output = " custom.out "
	if OutputName(cfg) != "custom.out" {
		t.Fatalf("显式输出名应优先")
	}
}

func TestDotEnvTemplate(t *testing.T) {
	s := DotEnvTemplate()
	for _, k := range []string{"WORDFREQ_CONFIG_FILE=", "WORDFREQ_COMPONENTS_WRITER=", "WORDFREQ_OPTIONS_WRITER_JSON=", "DATABASE_URL="} {
		if !contains(s, k) {
			t.Fatalf("模板缺少 %s", k)
		}
	}
}
