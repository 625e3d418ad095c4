package registry

import (
	"bytes"
	"encoding/json"
	"sort"

	"wordfreq/pkg/contract"
	ctable "wordfreq/plugins/counter/table"
	ejsonl "wordfreq/plugins/encoder/jsonl"
	etsv "wordfreq/plugins/encoder/tsv"
	rfs "wordfreq/plugins/reader/filesystem"
	ttb "wordfreq/plugins/tokenizer/treebank"
	wfs "wordfreq/plugins/writer/filesystem"
	wpg "wordfreq/plugins/writer/postgres"
	ws3 "wordfreq/plugins/writer/s3"
	wstd "wordfreq/plugins/writer/stdout"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewTokenizer 工厂签名：接收原样 JSON Options。
type NewTokenizer func(raw json.RawMessage) (contract.Tokenizer, error)

// NewCounter 工厂签名：接收原样 JSON Options。
type NewCounter func(raw json.RawMessage) (contract.Counter, error)

// NewEncoder 工厂签名：接收原样 JSON Options。
type NewEncoder func(raw json.RawMessage) (contract.Encoder, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader（.gz/.zst 透明解压）
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Tokenizer 工厂注册表。
var Tokenizer = map[string]NewTokenizer{
	// treebank: Penn Treebank 风格正则级联
	"treebank": func(raw json.RawMessage) (contract.Tokenizer, error) {
		var opts ttb.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ttb.New(&opts)
	},
}

// Counter 工厂注册表。
var Counter = map[string]NewCounter{
	"table": func(raw json.RawMessage) (contract.Counter, error) {
		var opts ctable.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ctable.New(&opts), nil
	},
}

// Encoder 工厂注册表。
var Encoder = map[string]NewEncoder{
	// tsv: token\tcount\n，按字节透传
	"tsv": func(raw json.RawMessage) (contract.Encoder, error) {
		var opts etsv.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return etsv.New(&opts), nil
	},
	// jsonl: 每行一个 {"token","count"}；无选项
	"jsonl": func(raw json.RawMessage) (contract.Encoder, error) {
		var opts struct{}
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ejsonl.New(), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// stdout: 标准输出（默认）
	"stdout": func(raw json.RawMessage) (contract.Writer, error) {
		var opts struct{}
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wstd.New(), nil
	},
	// fs: 文件系统 Writer（覆盖写/原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
	// s3: S3 兼容对象存储（minio-go）
	"s3": func(raw json.RawMessage) (contract.Writer, error) {
		var opts ws3.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ws3.New(&opts)
	},
	// pg: PostgreSQL（pgx database/sql 驱动）
	"pg": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wpg.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wpg.New(&opts)
	},
}

// Names 返回注册表中已登记的名称（升序），用于校验与帮助信息。
func Names[F any](m map[string]F) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
