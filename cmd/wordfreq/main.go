package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "wordfreq/internal/config"
	"wordfreq/internal/diag"
	"wordfreq/internal/pipeline"
)

var (
	pipelineRun = pipeline.Run
	tokenizeRun = pipeline.Tokenize
)

// 退出码：0 成功；1 运行期错误（读/写/取消）；3 配置或装配错误。
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 3
)

// cliFlags 汇总全部命令行旗标；Top/MinCount 仅在显式给出时覆盖。
type cliFlags struct {
	config   string
	output   string
	top      int
	minCount int64
	encoder  string
	writer   string
	logLevel string
	initDir  string
	status   bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 解析参数并执行；返回进程退出码。
// 位置参数为 roots（文件/目录 或 "-" 表示 STDIN，不能与其他根混用）。
func run(args []string) int {
	// 在任何 ENV 读取前加载工作目录下的 .env（不覆盖已有 ENV）
	_ = godotenv.Load(".env")

	code := exitOK
	root := newRootCmd(&code)
	root.SetArgs(normalizeInitArg(args))
	if err := root.Execute(); err != nil {
		// 旗标/参数解析错误
		fprintf(os.Stderr, "参数错误: %v\n", err)
		return exitConfig
	}
	return code
}

func newRootCmd(code *int) *cobra.Command {
	var f cliFlags
	cmd := &cobra.Command{
		Use:           "wordfreq [roots...]",
		Short:         "Penn Treebank 风格分词并统计词频",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, roots []string) error {
			if dir := strings.TrimSpace(f.initDir); dir != "" {
				*code = initConfig(dir)
				return nil
			}
			*code = runCount(cmd, &f, roots)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "配置文件路径（JSON/YAML）；缺省读取 ./wordfreq.json|yaml|yml（若存在）")
	pf.StringVar(&f.logLevel, "log-level", "", "日志等级 debug|info|warn|error（覆盖配置）")

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "输出工件名（覆盖配置）")
	fl.IntVar(&f.top, "top", 0, "只输出前 N 条；0 表示全部")
	fl.Int64Var(&f.minCount, "min-count", 0, "只输出计数不低于该值的条目；0 表示全部")
	fl.StringVar(&f.encoder, "encoder", "", "编码器名 tsv|jsonl（覆盖配置）")
	fl.StringVar(&f.writer, "writer", "", "写出端名 stdout|fs|s3|pg（覆盖配置）")
	fl.BoolVar(&f.status, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	fl.StringVar(&f.initDir, "init-config", "", "在指定目录生成 wordfreq.json 与 .env 模板（不覆盖）；不带值时为当前目录")

	cmd.AddCommand(newTokenizeCmd(code, &f))
	return cmd
}

// newTokenizeCmd: 只分词不计数，逐行输出分词结果到标准输出。
func newTokenizeCmd(code *int, f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize [roots...]",
		Short: "逐行输出分词结果（token 以单个空格分隔）",
		RunE: func(cmd *cobra.Command, roots []string) error {
			*code = runTokenize(cmd, f, roots)
			return nil
		},
	}
}

func runCount(cmd *cobra.Command, f *cliFlags, roots []string) int {
	start := time.Now()
	corrID := genCorrID()
	logger := diag.NewLogger(corrID, "info", "")

	cfg, err := loadConfig(cmd, f, roots)
	if err != nil {
		fprintf(os.Stderr, "配置解析失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "first error", &start)
		_ = logger.Close()
		return exitConfig
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		// 打印有效配置，便于诊断
		_ = dumpConfig(cfg)
		logger.Error("config", string(diag.Classify(err)), "first error", &start)
		_ = logger.Close()
		return exitConfig
	}

	// 使用最终配置中的日志等级与目录重建 logger
	_ = logger.Close()
	logger = diag.NewLogger(corrID, cfg.Logging.Level, cfg.Logging.Dir)
	defer logger.Close()

	// 预检：若使用文件系统 Writer，检查输出目录的可写性
	if err := preflightCheckOutputDir(cfg); err != nil {
		fprintf(os.Stderr, "输出目录不可写或无法创建: %v\n", err)
		logger.Error("writer", string(diag.Classify(err)), "preflight failed", &start)
		return exitConfig
	}

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "assemble failed", &start)
		return exitConfig
	}
	if c, ok := comp.Writer.(io.Closer); ok {
		defer c.Close()
	}

	// 终端信息提示（非日志）：按 CLI 启用，默认开启
	term := diag.NewTerminal(os.Stderr, f.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(len(set.Inputs), cfg.Components.Tokenizer)

	logger.DebugStart("config", "effective", "", map[string]string{
		"inputs_count": strconv.Itoa(len(cfg.Inputs)),
		"output":       string(set.Output),
		"top":          strconv.Itoa(cfg.Top),
		"min_count":    strconv.FormatInt(cfg.MinCount, 10),
		"reader":       cfg.Components.Reader,
		"tokenizer":    cfg.Components.Tokenizer,
		"counter":      cfg.Components.Counter,
		"encoder":      cfg.Components.Encoder,
		"writer":       cfg.Components.Writer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pipelineRun(ctx, comp, set, logger); err != nil {
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		st := comp.Counter.Stats()
		term.RunFinish(false, time.Since(start), st.Distinct, st.Total)
		return exitRuntime
	}
	st := comp.Counter.Stats()
	logger.InfoFinish("pipeline", "done", start, st.Total)
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	term.RunFinish(true, time.Since(start), st.Distinct, st.Total)
	return exitOK
}

func runTokenize(cmd *cobra.Command, f *cliFlags, roots []string) int {
	cfg, err := loadConfig(cmd, f, roots)
	if err == nil {
		err = cfgpkg.Validate(cfg)
	}
	if err != nil {
		fprintf(os.Stderr, "配置错误: %v\n", err)
		return exitConfig
	}
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		return exitConfig
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tokenizeRun(ctx, comp.Reader, comp.Tokenizer, set.Inputs, cmd.OutOrStdout()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		return exitRuntime
	}
	return exitOK
}

// loadConfig 按 默认值 → 文件 → ENV → CLI 的顺序合并配置。
// 文件来源：--config > WORDFREQ_CONFIG_JSON > WORDFREQ_CONFIG_FILE > 工作目录默认文件。
func loadConfig(cmd *cobra.Command, f *cliFlags, roots []string) (cfgpkg.Config, error) {
	path := strings.TrimSpace(f.config)
	var raw []byte
	if path == "" {
		if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_JSON"); strings.TrimSpace(s) != "" {
			raw = []byte(s)
		} else if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE"); strings.TrimSpace(s) != "" {
			path = strings.TrimSpace(s)
		} else {
			path = cfgpkg.FindDefault(".")
		}
	}

	cfg := cfgpkg.Defaults()
	switch {
	case len(raw) > 0:
		base, err := cfgpkg.LoadJSON("", raw)
		if err != nil {
			return cfgpkg.Config{}, fmt.Errorf("%sCONFIG_JSON: %w", cfgpkg.EnvPrefix, err)
		}
		cfg = cfgpkg.Merge(cfg, base)
	case path != "":
		base, err := cfgpkg.LoadFile(path)
		if err != nil {
			return cfgpkg.Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	overCLI := cfgpkg.Unset()
	overCLI.Inputs = roots
	overCLI.Output = f.output
	overCLI.Logging.Level = f.logLevel
	overCLI.Components.Encoder = f.encoder
	overCLI.Components.Writer = f.writer
	// 负值在 Merge 中表示“未覆盖”，显式给出时须在此拦截
	if fl := cmd.Flags().Lookup("top"); fl != nil && fl.Changed {
		if f.top < 0 {
			return cfgpkg.Config{}, fmt.Errorf("--top must be >= 0, got %d", f.top)
		}
		overCLI.Top = f.top
	}
	if fl := cmd.Flags().Lookup("min-count"); fl != nil && fl.Changed {
		if f.minCount < 0 {
			return cfgpkg.Config{}, fmt.Errorf("--min-count must be >= 0, got %d", f.minCount)
		}
		overCLI.MinCount = f.minCount
	}
	return cfgpkg.Merge(cfg, overCLI), nil
}

// initConfig 在 dir 下生成 wordfreq.json 与 .env 模板；配置文件已存在时报错，.env 已存在时跳过。
func initConfig(dir string) int {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
		return exitConfig
	}
	if err := writeConfig(filepath.Join(dir, "wordfreq.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
		fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
		return exitConfig
	}
	if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
		fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
	}
	return exitOK
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = os.Stderr.Write(append([]byte("有效配置:\n"), b...))
	_, _ = os.Stderr.Write([]byte("\n"))
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
func writeDotEnv(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(cfgpkg.DotEnvTemplate())
	return err
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// normalizeInitArg: 允许 --init-config 不带值，此时取当前目录 "."。
//
//	--init-config                => 等价于 --init-config .
//	--init-config=out
//	--init-config out
func normalizeInitArg(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for i, a := range args {
		out = append(out, a)
		if a != "--init-config" {
			continue
		}
		if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
			out = append(out, ".")
		}
	}
	return out
}

// preflightCheckOutputDir: Writer 为 fs 时，启动前检查输出目录可写性。
// 目录存在则尝试创建并删除临时文件；不存在则尝试创建目录。其他 writer 跳过。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	name := strings.TrimSpace(cfg.Components.Writer)
	if name == "" {
		name = cfgpkg.Defaults().Components.Writer
	}
	if name != "fs" {
		return nil
	}
	var wopts struct {
		OutputDir string `json:"output_dir"`
	}
	if len(cfg.Options.Writer) > 0 {
		_ = json.Unmarshal(cfg.Options.Writer, &wopts)
	}
	dir := strings.TrimSpace(wopts.OutputDir)
	if dir == "" {
		dir = "."
	}
	st, err := os.Stat(dir)
	switch {
	case err == nil && !st.IsDir():
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	case err != nil && !os.IsNotExist(err):
		return err
	case err != nil:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, ".wcheck-*")
	if err != nil {
		return err
	}
	name = tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(name)
	return nil
}
