package testdata

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	cfgpkg "wordfreq/internal/config"
	"wordfreq/internal/diag"
	"wordfreq/internal/pipeline"
	"wordfreq/pkg/contract"
)

// assemble 以 files/ 为输入根、fs writer 写到临时目录装配流水线。
func assemble(t *testing.T, mut func(*cfgpkg.Config)) (pipeline.Components, pipeline.Settings, string) {
	t.Helper()
	outDir := t.TempDir()
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Inputs = []string{"files"}
	cfg.Output = ""
	cfg.Components.Writer = "fs"
	wopts, _ := json.Marshal(map[string]any{"output_dir": outDir})
	cfg.Options.Writer = wopts
	if mut != nil {
		mut(&cfg)
	}
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		t.Fatalf("装配失败: %v", err)
	}
	return comp, set, outDir
}

// 端到端：目录遍历（含 .gz 透明解压）→ 分词 → 计数 → TSV 原子写出
func TestEndToEndTSV(t *testing.T) {
	comp, set, outDir := assemble(t, nil)
	if err := pipeline.Run(context.Background(), comp, set, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(outDir, "wordfreq.tsv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "the\t4\n" +
		".\t3\n" +
		"ca\t1\n" +
		"cat\t1\n" +
		"dog\t1\n" +
		"end\t1\n" +
		"mat\t1\n" +
		"n't\t1\n" +
		"on\t1\n" +
		"sat\t1\n" +
		"sit\t1\n"
	if string(got) != want {
		t.Fatalf("输出不一致:\n%s\nwant:\n%s", got, want)
	}
	st := comp.Counter.Stats()
	if st.Distinct != 11 || st.Total != 16 || st.Lines != 3 {
		t.Fatalf("统计错误: %+v", st)
	}
}

// top + jsonl：只保留前两条
func TestEndToEndTopJSONL(t *testing.T) {
	comp, set, outDir := assemble(t, func(c *cfgpkg.Config) {
		c.Top = 2
		c.Components.Encoder = "jsonl"
	})
	if set.Output != "wordfreq.jsonl" {
		t.Fatalf("输出名错误: %s", set.Output)
	}
	logger := diag.NewLoggerTo(discard{}, "e2e", "debug")
	if err := pipeline.Run(context.Background(), comp, set, logger); err != nil {
		t.Fatalf("run: %v", err)
	}
	buf, err := os.ReadFile(filepath.Join(outDir, "wordfreq.jsonl"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := `{"token":"the","count":4}` + "\n" + `{"token":".","count":3}` + "\n"
	if string(buf) != want {
		t.Fatalf("输出不一致: %q", buf)
	}
}

// exclude_dir_names 跳过 nested/（含 .gz）
func TestEndToEndExcludeDir(t *testing.T) {
	comp, set, outDir := assemble(t, func(c *cfgpkg.Config) {
		c.Options.Reader = json.RawMessage(`{"exclude_dir_names":["nested"],"allow_exts":[".txt"]}`)
		c.MinCount = 2
	})
	if err := pipeline.Run(context.Background(), comp, set, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(outDir, "wordfreq.tsv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "the\t3\n.\t2\n" {
		t.Fatalf("输出不一致: %q", got)
	}
}

// 输出名越界：writer 拒绝
func TestEndToEndOutputEscape(t *testing.T) {
	comp, set, _ := assemble(t, func(c *cfgpkg.Config) { c.Output = "../escape.tsv" })
	err := pipeline.Run(context.Background(), comp, set, nil)
	if err == nil {
		t.Fatalf("应当失败")
	}
	if !errors.Is(err, contract.ErrPathInvalid) || diag.Classify(err) != diag.CodeInvariant {
		t.Fatalf("分类错误: %v -> %s", err, diag.Classify(err))
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
