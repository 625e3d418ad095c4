package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix 为环境变量覆盖的统一前缀。
const EnvPrefix = "WORDFREQ_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Inputs:  []string{"-"},
		Logging: Logging{Level: "info", Dir: "logs"},
		Components: Components{
			Reader:    "fs",
			Tokenizer: "treebank",
			Counter:   "table",
			Encoder:   "tsv",
			Writer:    "stdout",
		},
	}
}

// Unset 返回一个“全部未设置”的覆盖层：Top/MinCount 以 -1 表示未覆盖，
// 以便 Merge 区分“未覆盖”与“显式设置为 0”。
func Unset() Config {
	return Config{Top: -1, MinCount: -1}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	r, closeFn, err := source(path, raw)
	if err != nil {
		return Config{}, err
	}
	defer closeFn()
	return decodeStrict(r)
}

// LoadYAML 解析 YAML 配置：先由 yaml.v3 解成通用结构，再转 JSON 走同一严格解码，
// 保证两种格式的字段集合与未知字段行为一致。
func LoadYAML(path string, raw []byte) (Config, error) {
	r, closeFn, err := source(path, raw)
	if err != nil {
		return Config{}, err
	}
	defer closeFn()
	var doc any
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.New("config: empty yaml document")
		}
		return Config{}, fmt.Errorf("config: yaml: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("config: yaml to json: %w", err)
	}
	return decodeStrict(bytes.NewReader(b))
}

// LoadFile 按扩展名选择 JSON 或 YAML 解析。
func LoadFile(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, nil)
	default:
		return LoadJSON(path, nil)
	}
}

// DefaultFiles 为未显式指定配置时依次探测的文件名。
var DefaultFiles = []string{"wordfreq.json", "wordfreq.yaml", "wordfreq.yml"}

// FindDefault 返回 dir 下第一个存在的默认配置文件；均不存在时返回空串。
func FindDefault(dir string) string {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func source(path string, raw []byte) (io.Reader, func(), error) {
	switch {
	case len(raw) > 0:
		return bytes.NewReader(raw), func() {}, nil
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	default:
		return nil, nil, errors.New("no config source provided")
	}
}

func decodeStrict(r io.Reader) (Config, error) {
	cfg := Unset()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if s := strings.TrimSpace(over.Output); s != "" {
		out.Output = s
	}
	// 0 具有语义（不限制），以 -1 表示未覆盖
	if over.Top >= 0 {
		out.Top = over.Top
	}
	if over.MinCount >= 0 {
		out.MinCount = over.MinCount
	}
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}

	// 组件名（空不覆盖）
	overName(&out.Components.Reader, over.Components.Reader)
	overName(&out.Components.Tokenizer, over.Components.Tokenizer)
	overName(&out.Components.Counter, over.Components.Counter)
	overName(&out.Components.Encoder, over.Components.Encoder)
	overName(&out.Components.Writer, over.Components.Writer)

	// Options（完整替换对应键）
	overRaw(&out.Options.Reader, over.Options.Reader)
	overRaw(&out.Options.Tokenizer, over.Options.Tokenizer)
	overRaw(&out.Options.Counter, over.Options.Counter)
	overRaw(&out.Options.Encoder, over.Options.Encoder)
	overRaw(&out.Options.Writer, over.Options.Writer)
	return out
}

func overName(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func overRaw(dst *json.RawMessage, v json.RawMessage) {
	if len(bytes.TrimSpace(v)) > 0 {
		*dst = cloneRaw(v)
	}
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 前缀 WORDFREQ_；支持：INPUTS, OUTPUT, TOP, MIN_COUNT, LOG_LEVEL, LOG_DIR,
// COMPONENTS_{READER,TOKENIZER,COUNTER,ENCODER,WRITER} 与 OPTIONS_<COMP>_JSON。
// 数值无法解析时报错，其余未知键忽略。
func EnvOverlay(environ []string) (Config, error) {
	over := Unset()
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[len(EnvPrefix):eq]
		val := kv[eq+1:]
		if strings.TrimSpace(val) == "" {
			continue
		}
		switch key {
		case "INPUTS":
			over.Inputs = splitComma(val)
		case "OUTPUT":
			over.Output = strings.TrimSpace(val)
		case "TOP":
			v, err := atoi(val)
			if err == nil && v < 0 {
				err = errors.New("must be >= 0")
			}
			if err != nil {
				return Config{}, fmt.Errorf("env %sTOP: %w", EnvPrefix, err)
			}
			over.Top = v
		case "MIN_COUNT":
			v, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err == nil && v < 0 {
				err = errors.New("must be >= 0")
			}
			if err != nil {
				return Config{}, fmt.Errorf("env %sMIN_COUNT: %w", EnvPrefix, err)
			}
			over.MinCount = v
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			over.Logging.Dir = strings.TrimSpace(val)
		case "COMPONENTS_READER":
			over.Components.Reader = strings.TrimSpace(val)
		case "COMPONENTS_TOKENIZER":
			over.Components.Tokenizer = strings.TrimSpace(val)
		case "COMPONENTS_COUNTER":
			over.Components.Counter = strings.TrimSpace(val)
		case "COMPONENTS_ENCODER":
			over.Components.Encoder = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "OPTIONS_READER_JSON":
			over.Options.Reader = json.RawMessage(val)
		case "OPTIONS_TOKENIZER_JSON":
			over.Options.Tokenizer = json.RawMessage(val)
		case "OPTIONS_COUNTER_JSON":
			over.Options.Counter = json.RawMessage(val)
		case "OPTIONS_ENCODER_JSON":
			over.Options.Encoder = json.RawMessage(val)
		case "OPTIONS_WRITER_JSON":
			over.Options.Writer = json.RawMessage(val)
		}
	}
	return over, nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
