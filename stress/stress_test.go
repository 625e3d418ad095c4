package stress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	cfgpkg "wordfreq/internal/config"
	"wordfreq/internal/pipeline"
)

var corpusLines = []string{
	"\"I can't believe it,\" she said... (quietly) -- then left!\n",
	"The cat's toy; the dog's bone & 3,000 coins.\n",
	"Gimme a minute: we're gonna wanna go, aren't we?\n",
	"'Tis the season. 'Twas the night before.\n",
}

// baseConfig 构造以 fs writer 写出到 outDir 的最小配置。
func baseConfig(input, outDir string, cacheSize int) cfgpkg.Config {
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Inputs = []string{input}
	cfg.Output = ""
	cfg.Components.Writer = "fs"
	cfg.Logging.Level = "error"
	cfg.Options.Tokenizer = json.RawMessage(fmt.Sprintf(`{"cache_size":%d,"max_cached_line_bytes":512}`, cacheSize))
	cfg.Options.Writer = json.RawMessage(fmt.Sprintf(`{"output_dir":%q,"atomic":true,"flat":true,"buf_size":65536}`, outDir))
	return cfg
}

func runPipeline(cfg cfgpkg.Config) error {
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return err
	}
	return pipeline.Run(context.Background(), comp, set, nil)
}

// writeCorpus 生成 n 行重复语料。
func writeCorpus(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(corpusLines[i%len(corpusLines)])
	}
	p := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return p
}

// TestStress 在不同缓存容量下运行流水线，记录延迟统计并确认输出一致。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	in := writeCorpus(t, t.TempDir(), 200000)
	var reference []byte
	for _, cache := range []int{0, 16, 4096} {
		t.Run(fmt.Sprintf("cache_%d", cache), func(t *testing.T) {
			const runs = 3
			latencies := make([]time.Duration, 0, runs)
			for i := 0; i < runs; i++ {
				outDir := t.TempDir()
				start := time.Now()
				if err := runPipeline(baseConfig(in, outDir, cache)); err != nil {
					t.Fatalf("run %d: %v", i, err)
				}
				latencies = append(latencies, time.Since(start))
				got, err := os.ReadFile(filepath.Join(outDir, "wordfreq.tsv"))
				if err != nil {
					t.Fatalf("read output: %v", err)
				}
				if reference == nil {
					reference = got
				} else if !bytes.Equal(reference, got) {
					t.Fatalf("cache=%d 输出与基准不一致", cache)
				}
			}
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			var total time.Duration
			for _, d := range latencies {
				total += d
			}
			avg := total / time.Duration(len(latencies))
			idx := int(math.Ceil(float64(len(latencies))*0.95)) - 1
			if idx < 0 {
				idx = 0
			}
			t.Logf("缓存%d 平均%v 95%%延迟%v", cache, avg, latencies[idx])
		})
	}
}
