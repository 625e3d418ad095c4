package diag

import (
	"sort"
	"strconv"
	"sync"
)

// 进程内最小指标：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计和与次数）
var metrics = struct {
	mu    sync.Mutex
	ops   map[string]int64
	errs  map[string]int64
	durMS map[string]int64
	durN  map[string]int64
}{
	ops:   map[string]int64{},
	errs:  map[string]int64{},
	durMS: map[string]int64{},
	durN:  map[string]int64{},
}

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	metrics.mu.Lock()
	metrics.ops[comp+"/"+stage+"/"+result]++
	metrics.mu.Unlock()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	metrics.mu.Lock()
	metrics.errs[comp+"/"+code]++
	metrics.mu.Unlock()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	metrics.mu.Lock()
	metrics.durMS[comp+"/"+stage] += durMS
	metrics.durN[comp+"/"+stage]++
	metrics.mu.Unlock()
}

// Sample 为快照中的一项。
type Sample struct {
	Name  string
	Key   string
	Value int64
}

// Snapshot 返回当前全部计数的拷贝，按 Name、Key 排序。
func Snapshot() []Sample {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	out := make([]Sample, 0, len(metrics.ops)+len(metrics.errs)+2*len(metrics.durN))
	for k, v := range metrics.ops {
		out = append(out, Sample{Name: "op_total", Key: k, Value: v})
	}
	for k, v := range metrics.errs {
		out = append(out, Sample{Name: "error_total", Key: k, Value: v})
	}
	for k, v := range metrics.durMS {
		out = append(out, Sample{Name: "op_duration_ms_sum", Key: k, Value: v})
	}
	for k, v := range metrics.durN {
		out = append(out, Sample{Name: "op_duration_ms_count", Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// SnapshotKV 将快照压平成日志键值。
func SnapshotKV() map[string]string {
	s := Snapshot()
	kv := make(map[string]string, len(s))
	for _, m := range s {
		kv[m.Name+"{"+m.Key+"}"] = strconv.FormatInt(m.Value, 10)
	}
	return kv
}

// ResetMetrics 清空全部计数。
func ResetMetrics() {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	clear(metrics.ops)
	clear(metrics.errs)
	clear(metrics.durMS)
	clear(metrics.durN)
}
